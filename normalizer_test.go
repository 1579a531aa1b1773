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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizerMissingBinary(t *testing.T) {
	n := NewNormalizer(filepath.Join(t.TempDir(), "no-such-soffice"), zerolog.Nop())

	_, err := n.Check()
	assert.True(t, IsKind(err, KindToolUnavailable), "got %v", err)

	src := filepath.Join(t.TempDir(), "a.doc")
	writeFile(t, src, oleHeader)
	_, err = n.Normalize(context.Background(), src)
	assert.True(t, IsKind(err, KindToolUnavailable), "got %v", err)
}

func TestNormalize(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "fixture.docx")
	writeDocx(t, fixture, para("from legacy"))
	t.Setenv("DOCQA_FAKE_DOCX", fixture)

	dir := t.TempDir()
	src := filepath.Join(dir, "report.doc")
	writeFile(t, src, oleHeader)

	n := NewNormalizer(fakeOffice(t, copyingOffice), zerolog.Nop())
	got, err := n.Normalize(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConvertedDirName, "report.doc", "report.docx"), got)

	doc, err := ParseDocxFile(got)
	require.NoError(t, err)
	assert.Equal(t, "from legacy\n", doc.Text())
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		want    string
	}{
		{"non-zero exit", "echo 'source file could not be loaded' >&2\nexit 3\n", 0, "source file could not be loaded"},
		{"no output produced", "exit 0\n", 0, "produced no"},
		{"timeout", "exec sleep 5\n", 100 * time.Millisecond, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "a.doc")
			writeFile(t, src, oleHeader)
			n := NewNormalizer(fakeOffice(t, tt.script), zerolog.Nop())
			n.Timeout = tt.timeout

			_, err := n.Normalize(context.Background(), src)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindConversionFailed), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNormalizeIgnoresPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.doc")
	writeFile(t, src, oleHeader)
	stale := filepath.Join(dir, ConvertedDirName, "a.doc", "a.docx")
	writeDocx(t, stale, para("from an earlier run"))

	n := NewNormalizer(fakeOffice(t, "exit 0\n"), zerolog.Nop())
	_, err := n.Normalize(context.Background(), src)

	assert.True(t, IsKind(err, KindConversionFailed), "got %v", err)
	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNormalizerWorkDirKeyedBySource(t *testing.T) {
	work := t.TempDir()
	n := &Normalizer{WorkDir: work}

	root := t.TempDir()
	a := n.outputDir(filepath.Join(root, "x", "same.doc"))
	b := n.outputDir(filepath.Join(root, "y", "same.doc"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, work, filepath.Dir(a))
	assert.Equal(t, a, n.outputDir(filepath.Join(root, "x", "same.doc")))
}

func TestConvertPDFRejectsGarbage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "scan.pdf")
	writeFile(t, src, []byte("%PDF-1.4\nthis is not really a pdf"))

	n := NewNormalizer(filepath.Join(t.TempDir(), "no-such-soffice"), zerolog.Nop())
	err := n.ConvertPDF(context.Background(), src, filepath.Join(t.TempDir(), "scan.docx"))
	assert.True(t, IsKind(err, KindParseError), "got %v", err)
}

func TestMoveFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.docx")
	writeFile(t, src, []byte("payload"))
	dst := filepath.Join(t.TempDir(), "nested", "b.docx")

	require.NoError(t, moveFile(src, dst))
	assert.Equal(t, "payload", readFile(t, dst))
	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}
