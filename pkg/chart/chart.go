// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package chart reads and rewrites Helm-style Chart.yaml manifests.
//
// Reads go through a typed view; writes mutate the raw document instead, so
// fields this tool doesn't know about survive a rewrite untouched.
package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/utils"
	"github.com/goccy/go-yaml"
)

var ErrInvalidChart = fmt.Errorf("invalid chart manifest")

type Chart struct {
	AbsolutePath string `yaml:"-"`

	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	AppVersion   string        `yaml:"appVersion,omitempty"`
	Dependencies []*Dependency `yaml:"dependencies,omitempty"`
}

type Dependency struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	Repository string `yaml:"repository,omitempty"`
}

func Read(filePath string) (*Chart, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	contents, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadContents(contents, abs)
}

func ReadContents(contents []byte, absPath string) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChart, err.Error())
	}
	if c.Version == "" {
		return nil, fmt.Errorf("%w: missing required field 'version'", ErrInvalidChart)
	}
	c.AbsolutePath = absPath
	return &c, nil
}

// SemVer parses the chart's own version field.
func (c *Chart) SemVer() (*semver.Version, error) {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %s", ErrInvalidChart, c.Version, err.Error())
	}
	return v, nil
}

// Reader satisfies the manifest-version collaborator interface consumed by
// the resolver.
type Reader struct{}

func (Reader) ReadVersion(path string) (string, *semver.Version, error) {
	c, err := Read(path)
	if err != nil {
		return "", nil, err
	}
	v, err := c.SemVer()
	if err != nil {
		return "", nil, err
	}
	return c.Name, v, nil
}

// Update is an in-place rewrite of a chart manifest. All mutations work on
// the raw document, preserving fields outside this tool's schema.
type Update struct {
	path string
	doc  map[string]interface{}
}

func NewUpdate(filePath string) (*Update, error) {
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChart, err.Error())
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidChart)
	}

	return &Update{path: filePath, doc: doc}, nil
}

func (u *Update) SetVersion(version string) {
	u.doc["version"] = version
}

func (u *Update) SetAppVersion(appVersion string) {
	u.doc["appVersion"] = appVersion
}

// SetDependencyVersion updates the version of the named dependency.
// Unknown dependencies are reported so the caller can surface a typo'd
// chart name rather than silently writing nothing.
func (u *Update) SetDependencyVersion(name, version string) (bool, error) {
	rawDeps, ok := u.doc["dependencies"]
	if !ok {
		return false, nil
	}
	deps, ok := rawDeps.([]interface{})
	if !ok {
		return false, fmt.Errorf("%w: 'dependencies' is not a list", ErrInvalidChart)
	}

	for _, rawDep := range deps {
		dep, ok := rawDep.(map[string]interface{})
		if !ok {
			return false, fmt.Errorf("%w: malformed dependency entry", ErrInvalidChart)
		}
		if dep["name"] == name {
			dep["version"] = version
			return true, nil
		}
	}
	return false, nil
}

// Write persists the mutated document. With backup enabled the previous
// contents are kept next to the manifest first.
func (u *Update) Write(backup bool) error {
	if backup {
		if err := utils.CopyFile(u.path, u.path+relsyncconfig.ChartBackupSuffix); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(u.doc)
	if err != nil {
		return err
	}
	return os.WriteFile(u.path, data, 0644)
}
