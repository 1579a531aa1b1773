// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docqa

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorKind classifies a conversion failure.
type ErrorKind string

const (
	// KindNoInputFound is fatal: planning found nothing to convert.
	KindNoInputFound ErrorKind = "NoInputFound"
	// KindToolUnavailable means the external converter binary is missing.
	KindToolUnavailable ErrorKind = "ToolUnavailable"
	// KindConversionFailed means the external converter ran but did not produce output.
	KindConversionFailed ErrorKind = "ConversionFailed"
	// KindParseError means the document is corrupt or not a recognized container.
	KindParseError ErrorKind = "ParseError"
	// KindUnsupportedFormat means the extension or content is not a supported document.
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	// KindIOFailure covers write and mkdir failures.
	KindIOFailure ErrorKind = "IOFailure"
	// KindDestinationConflict means another source already maps to the same output path.
	KindDestinationConflict ErrorKind = "DestinationConflict"
	// KindInternal is a recovered panic inside a job.
	KindInternal ErrorKind = "Internal"
)

// Error is a classified conversion error.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	parts := []string{string(e.Kind)}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%q", e.Path))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, " ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Unclassified
// errors are reported as KindIOFailure when they come from the filesystem and
// as KindInternal otherwise.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindIOFailure
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var target *Error
	return errors.As(err, &target) && target.Kind == kind
}

// IsNoInputFound reports whether planning failed because nothing was found.
func IsNoInputFound(err error) bool {
	return IsKind(err, KindNoInputFound)
}

// IsUnsupportedFormat reports whether the error is an unsupported-format error.
func IsUnsupportedFormat(err error) bool {
	return IsKind(err, KindUnsupportedFormat)
}
