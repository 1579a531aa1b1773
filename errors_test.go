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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := newError(KindParseError, "/in/a.docx", errors.New("bad zip"))
	assert.Equal(t, `ParseError path="/in/a.docx" bad zip`, err.Error())
	assert.Equal(t, "ToolUnavailable", newError(KindToolUnavailable, "", nil).Error())
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"classified", newError(KindConversionFailed, "x", base), KindConversionFailed},
		{"wrapped classified", fmt.Errorf("job: %w", newError(KindIOFailure, "x", base)), KindIOFailure},
		{"path error", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, KindIOFailure},
		{"unclassified", base, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	base := errors.New("inner")
	err := fmt.Errorf("wrap: %w", newError(KindUnsupportedFormat, "a.rtf", base))

	assert.True(t, IsUnsupportedFormat(err))
	assert.False(t, IsNoInputFound(err))
	assert.True(t, errors.Is(err, base))
	assert.False(t, IsKind(base, KindInternal))
}
