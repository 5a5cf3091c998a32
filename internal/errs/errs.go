// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the error kinds surfaced by the pipeline (§7) and
// wraps causes with github.com/pkg/errors so a stack trace travels with the
// kind.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the four error kinds named in §7.
type Kind string

const (
	KindConfiguration Kind = "ConfigurationError"
	KindCalibration   Kind = "CalibrationError"
	KindInput         Kind = "InputError"
	KindIO            Kind = "IOError"
)

// Error is a typed, wrapped pipeline error. errors.As can recover it from a
// wrapped chain; its Kind distinguishes fatal configuration/calibration
// failures (abort before any artifact is written) from per-record/IO
// failures that are counted and surfaced in the result summary.
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a new Error of kind with msg, wrapped for stack context.
func New(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, msg: msg})
}

// Wrap returns a new Error of kind wrapping cause with msg, stack-annotated.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, msg: msg, Err: cause})
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) error {
	return Wrap(kind, cause, fmt.Sprintf(format, args...))
}

// Configuration wraps a ConfigurationError.
func Configuration(msg string, args ...interface{}) error {
	return New(KindConfiguration, fmt.Sprintf(msg, args...))
}

// Calibration wraps a CalibrationError.
func Calibration(cause error, msg string) error {
	return Wrap(KindCalibration, cause, msg)
}

// Input wraps an InputError.
func Input(msg string, args ...interface{}) error {
	return New(KindInput, fmt.Sprintf(msg, args...))
}

// IO wraps an IOError.
func IO(cause error, msg string) error {
	return Wrap(KindIO, cause, msg)
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, reporting
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsFatal reports whether err is a stage-level configuration or calibration
// failure, which per §7 must abort the pipeline before any artifact is
// written.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindConfiguration || k == KindCalibration
}
