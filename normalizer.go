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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

const (
	// DefaultOfficeBinary is the LibreOffice command line entry point.
	DefaultOfficeBinary = "soffice"
	// ConvertedDirName is the scratch directory created next to legacy sources.
	ConvertedDirName = "_converted_docx"
	// DefaultNormalizeTimeout bounds one external conversion.
	DefaultNormalizeTimeout = 2 * time.Minute
)

// Normalizer turns legacy .doc files (and PDFs) into .docx by running
// LibreOffice headless. Every call is independent; calls may run concurrently.
type Normalizer struct {
	// Binary is the converter executable, looked up on PATH.
	Binary string
	// WorkDir, when set, holds all converted files keyed by a hash of the
	// absolute source path. Otherwise they go to _converted_docx/<name>/
	// next to each source.
	WorkDir string
	// Timeout bounds one conversion. Zero means DefaultNormalizeTimeout.
	Timeout time.Duration

	logger zerolog.Logger
}

// NewNormalizer creates a Normalizer for the given executable.
func NewNormalizer(binary string, logger zerolog.Logger) *Normalizer {
	if binary == "" {
		binary = DefaultOfficeBinary
	}
	return &Normalizer{Binary: binary, logger: logger}
}

// Check fails with ToolUnavailable when the executable cannot be found.
func (n *Normalizer) Check() (string, error) {
	bin, err := exec.LookPath(n.Binary)
	if err != nil {
		return "", newError(KindToolUnavailable, n.Binary,
			fmt.Errorf("%s not found on PATH; install LibreOffice to convert legacy documents: %w", n.Binary, err))
	}
	return bin, nil
}

// Normalize converts a legacy document to DOCX and returns the path of the
// produced file.
func (n *Normalizer) Normalize(ctx context.Context, src string) (string, error) {
	outDir := n.outputDir(src)
	produced := filepath.Join(outDir, swapExt(filepath.Base(src), ".docx"))
	if err := removeStale(produced); err != nil {
		return "", err
	}
	if err := n.run(ctx, src, outDir, "docx"); err != nil {
		return "", err
	}
	if !exists(produced) {
		return "", newError(KindConversionFailed, src, fmt.Errorf("converter produced no %s", produced))
	}
	return produced, nil
}

// ConvertPDF converts a PDF to DOCX at dst. The PDF is opened first so an
// unreadable file fails as a parse error instead of a converter crash.
func (n *Normalizer) ConvertPDF(ctx context.Context, src, dst string) error {
	if err := preflightPDF(src); err != nil {
		return err
	}
	outDir := n.outputDir(src)
	produced := filepath.Join(outDir, swapExt(filepath.Base(src), ".docx"))
	if err := removeStale(produced); err != nil {
		return err
	}
	if err := n.run(ctx, src, outDir, `docx:MS Word 2007 XML`, "--infilter=writer_pdf_import"); err != nil {
		return err
	}
	if !exists(produced) {
		return newError(KindConversionFailed, src, fmt.Errorf("converter produced no %s", produced))
	}
	if err := moveFile(produced, dst); err != nil {
		return newError(KindIOFailure, dst, err)
	}
	return nil
}

func (n *Normalizer) run(ctx context.Context, src, outDir, convertTo string, extra ...string) error {
	bin, err := n.Check()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return newError(KindIOFailure, outDir, fmt.Errorf("create converter output directory: %w", err))
	}

	// A private profile per call: LibreOffice refuses to start twice on one profile.
	profile, err := os.MkdirTemp("", "docqa-office-*")
	if err != nil {
		return newError(KindIOFailure, src, fmt.Errorf("create converter profile: %w", err))
	}
	defer os.RemoveAll(profile)

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultNormalizeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--headless",
		"--norestore",
		"-env:UserInstallation=" + (&url.URL{Scheme: "file", Path: filepath.ToSlash(profile)}).String(),
	}
	args = append(args, extra...)
	args = append(args, "--convert-to", convertTo, "--outdir", outDir, src)

	n.logger.Debug().Str("src", src).Str("outdir", outDir).Msg("running external converter")
	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	// soffice forks soffice.bin, which can hold the output pipes after a kill.
	cmd.WaitDelay = 5 * time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return newError(KindConversionFailed, src, fmt.Errorf("converter timed out after %s", timeout))
	}
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return newError(KindConversionFailed, src, errors.New(msg))
	}
	n.logger.Debug().Str("src", src).Dur("took", time.Since(start)).Msg("external converter finished")
	return nil
}

func (n *Normalizer) outputDir(src string) string {
	if n.WorkDir == "" {
		return filepath.Join(filepath.Dir(src), ConvertedDirName, filepath.Base(src))
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	h := sha256.Sum256([]byte(abs))
	return filepath.Join(n.WorkDir, hex.EncodeToString(h[:8]))
}

// removeStale deletes the output of an earlier conversion so only a file
// written by this run is picked up.
func removeStale(produced string) error {
	if err := os.Remove(produced); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newError(KindIOFailure, produced, fmt.Errorf("remove previous conversion: %w", err))
	}
	return nil
}

func preflightPDF(src string) (err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindParseError, src, fmt.Errorf("read PDF: %v", r))
		}
	}()
	f, r, err := pdf.Open(src)
	if err != nil {
		return newError(KindParseError, src, fmt.Errorf("open PDF: %w", err))
	}
	defer f.Close()
	if r.NumPage() == 0 {
		return newError(KindParseError, src, errors.New("PDF has no pages"))
	}
	return nil
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
