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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDestinationDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	src := filepath.Join(in, "a", "b.docx")
	writeDocx(t, src, para("x"))

	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"mirrors under output root", out, filepath.Join(out, "a", "b.txt")},
		{"default output dir", "", filepath.Join(in, DefaultOutputDir, "a", "b.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapDestination(src, in, tt.output, ".txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapDestinationSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.DOCX")
	writeDocx(t, src, para("x"))
	outDir := t.TempDir()

	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"next to source", "", filepath.Join(dir, "report.txt")},
		{"explicit file", filepath.Join(outDir, "custom.txt"), filepath.Join(outDir, "custom.txt")},
		{"explicit file case-insensitive", filepath.Join(outDir, "custom.TXT"), filepath.Join(outDir, "custom.TXT")},
		{"existing directory", outDir, filepath.Join(outDir, "report.txt")},
		{"missing directory falls back to source dir", filepath.Join(outDir, "nope"), filepath.Join(dir, "report.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapDestination(src, src, tt.output, ".txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapDestinationErrors(t *testing.T) {
	in := t.TempDir()

	_, err := MapDestination(filepath.Join(in, "x.docx"), filepath.Join(in, "missing"), "", ".txt")
	assert.True(t, IsKind(err, KindIOFailure), "got %v", err)

	outside := filepath.Join(t.TempDir(), "y.docx")
	_, err = MapDestination(outside, in, "", ".txt")
	assert.True(t, IsKind(err, KindIOFailure), "got %v", err)
}

func TestMapDestinationDoesNotCreateDirectories(t *testing.T) {
	in := t.TempDir()
	src := filepath.Join(in, "deep", "doc.doc")
	writeFile(t, src, oleHeader)

	got, err := MapDestination(src, in, "", ".txt")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Dir(got))
	assert.True(t, os.IsNotExist(err))
}
