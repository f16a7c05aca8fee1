// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolveerrors

import (
	"encoding/json"
	"errors"
)

const (
	InvalidVersion     = "INVALID_VERSION"
	InvalidOverrideTag = "INVALID_OVERRIDE_TAG"
	NoUpdatesAvailable = "NO_UPDATES_AVAILABLE"
	UnknownError       = "UNKNOWN_ERROR"
)

// ResolutionError is a per-submodule failure carried inside a Resolution.
// It marks a single component as failed without aborting the run.
type ResolutionError struct {
	Code  string
	Cause error
}

func (r *ResolutionError) Error() string {
	if r.Cause != nil {
		return r.Code + ": " + r.Cause.Error()
	}
	return r.Code
}

func (r *ResolutionError) MarshalYAML() (interface{}, error) {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	return map[string]interface{}{
		"code":  r.Code,
		"cause": causeStr,
	}, nil
}

func (r *ResolutionError) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux struct {
		Code  string `yaml:"code"`
		Cause string `yaml:"cause"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	r.Code = aux.Code
	if aux.Cause != "" {
		r.Cause = errors.New(aux.Cause)
	}
	return nil
}

func (r *ResolutionError) MarshalJSON() ([]byte, error) {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	return json.Marshal(map[string]string{
		"code":  r.Code,
		"cause": causeStr,
	})
}

func (r *ResolutionError) UnmarshalJSON(data []byte) error {
	var aux struct {
		Code  string `json:"code"`
		Cause string `json:"cause"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Code = aux.Code
	if aux.Cause != "" {
		r.Cause = errors.New(aux.Cause)
	}
	return nil
}

func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

var _ error = (*ResolutionError)(nil)

func NewInvalidVersionError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  InvalidVersion,
		Cause: cause,
	}
}

func NewInvalidOverrideTagError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  InvalidOverrideTag,
		Cause: cause,
	}
}

func NewNoUpdatesAvailableError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  NoUpdatesAvailable,
		Cause: cause,
	}
}

func NewUnknownError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  UnknownError,
		Cause: cause,
	}
}

func Standardize(err error) *ResolutionError {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}

	return NewUnknownError(err)
}
