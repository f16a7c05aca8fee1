// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders a Resolution for humans (terminal table), machines
// (JSON) and review threads (GitHub comment Markdown).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/samber/lo"
)

type Format string

const (
	FormatCLI     Format = "cli"
	FormatJSON    Format = "json"
	FormatComment Format = "comment"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCLI, FormatJSON, FormatComment:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected cli, json or comment", s)
	}
}

// Render writes the resolution in the requested format. stale annotates the
// summary of replayed resolutions whose source pins have moved since.
func Render(w io.Writer, res *resolution.Resolution, format Format, stale bool) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, res)
	case FormatComment:
		return renderComment(w, res, stale)
	default:
		return renderCLI(w, res, stale)
	}
}

// Decode reads a JSON-rendered resolution back, for re-rendering.
func Decode(r io.Reader) (*resolution.Resolution, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var res resolution.Resolution
	if err := json.Unmarshal(contents, &res); err != nil {
		return nil, fmt.Errorf("not a resolution document: %w", err)
	}
	return &res, nil
}

func renderJSON(w io.Writer, res *resolution.Resolution) error {
	contents, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(contents))
	return err
}

func renderCLI(w io.Writer, res *resolution.Resolution, stale bool) error {
	fmt.Fprintf(w, "Resolution is %s\n\n", res.Summary(stale))

	rows := lo.Map(componentNames(res), func(name string, _ int) []string {
		c := res.Components[name]
		note := string(c.Source)
		if c.Failed() {
			note = color.RedString(c.Errors[0].Code)
		}
		return []string{
			name,
			orDash(c.CurrentTag),
			orDash(c.SuggestedTag),
			coloredBump(c.Bump),
			note,
		}
	})

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers("SUBMODULE", "CURRENT", "SUGGESTED", "BUMP", "").
		Rows(rows...)
	fmt.Fprintln(w, tbl.Render())

	for _, agg := range res.Aggregations {
		fmt.Fprintf(w, "%s: %s -> %s (%s)%s\n",
			agg.ManifestID,
			versionOrDash(agg.CurrentVersion),
			versionOrDash(agg.SuggestedVersion),
			coloredBump(agg.Bump),
			partialNote(agg),
		)
	}
	return nil
}

func renderComment(w io.Writer, res *resolution.Resolution, stale bool) error {
	var b strings.Builder
	b.WriteString("### Release sync suggestions\n\n")
	b.WriteString(fmt.Sprintf("Resolution is %s\n\n", res.Summary(stale)))
	b.WriteString("| Submodule | Current | Suggested | Bump |\n")
	b.WriteString("|---|---|---|---|\n")

	for _, name := range componentNames(res) {
		c := res.Components[name]
		bumpCell := c.Bump.String()
		if c.Failed() {
			bumpCell = "failed: " + c.Errors[0].Code
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			name, orDash(c.CurrentTag), orDash(c.SuggestedTag), bumpCell))
	}

	for _, agg := range res.Aggregations {
		b.WriteString(fmt.Sprintf("\n**%s**: %s -> %s (%s)%s\n",
			agg.ManifestID,
			versionOrDash(agg.CurrentVersion),
			versionOrDash(agg.SuggestedVersion),
			agg.Bump.String(),
			partialNote(agg),
		))
	}
	b.WriteString("\nApply with `relsync update --use-state-file`.\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func componentNames(res *resolution.Resolution) []string {
	return slices.Sorted(maps.Keys(res.Components))
}

func coloredBump(k bump.Kind) string {
	switch k {
	case bump.Major:
		return color.RedString(k.String())
	case bump.Minor:
		return color.YellowString(k.String())
	case bump.Patch:
		return color.CyanString(k.String())
	default:
		return k.String()
	}
}

func partialNote(agg *resolution.ManifestAggregation) string {
	if agg.Partial {
		return " [partial]"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func versionOrDash(v *resolution.SemVer) string {
	if v == nil {
		return "-"
	}
	return v.String()
}
