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

package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoText means the input directory holds no .txt files.
var ErrNoText = errors.New("no .txt files found")

// Result counts what ProcessDir did.
type Result struct {
	Written int
	Skipped int
	Failed  int
}

func (r Result) String() string {
	return fmt.Sprintf("written %d, skipped %d, failed %d", r.Written, r.Skipped, r.Failed)
}

// Pipeline generates one JSON record file per text file.
type Pipeline struct {
	Generator Generator
	// Policy decides the pair count per file. Nil uses DefaultPolicy.
	Policy CountPolicy
	Logger zerolog.Logger
}

// FileStatus is what ProcessFile did with one file.
type FileStatus int

const (
	FileWritten FileStatus = iota
	FileSkipped
)

// ProcessDir handles every .txt directly inside inDir, writing <stem>.json
// to outDir. Existing outputs are kept. A failing file is logged and counted;
// it does not stop the rest.
func (p *Pipeline) ProcessDir(ctx context.Context, inDir, outDir string) (Result, error) {
	var res Result
	paths, err := filepath.Glob(filepath.Join(inDir, "*.txt"))
	if err != nil {
		return res, err
	}
	if len(paths) == 0 {
		return res, fmt.Errorf("%s: %w", inDir, ErrNoText)
	}
	sort.Strings(paths)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		status, err := p.ProcessFile(ctx, path, outDir)
		switch {
		case err != nil:
			res.Failed++
			p.Logger.Warn().Err(err).Str("file", path).Msg("question generation failed")
		case status == FileSkipped:
			res.Skipped++
		default:
			res.Written++
		}
	}
	return res, nil
}

// ProcessFile generates records for one text file.
func (p *Pipeline) ProcessFile(ctx context.Context, path, outDir string) (FileStatus, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, stem+".json")
	if _, err := os.Stat(outPath); err == nil {
		p.Logger.Info().Str("file", outPath).Msg("output exists, skipping")
		return FileSkipped, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	policy := p.Policy
	if policy == nil {
		policy = DefaultPolicy
	}
	n := policy.Count(info.Size())

	text, err := ReadText(path)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		p.Logger.Info().Str("file", path).Msg("empty text, skipping")
		return FileSkipped, nil
	}

	p.Logger.Info().Str("file", path).Int64("bytes", info.Size()).Int("pairs", n).Msg("generating")
	pairs, err := p.Generator.Generate(ctx, text, n)
	if err != nil {
		return 0, err
	}
	records := ToRecords(pairs)
	if len(records) == 0 {
		p.Logger.Warn().Str("file", path).Msg("model returned no usable pairs")
		return FileSkipped, nil
	}
	if err := WriteRecords(outPath, records); err != nil {
		return 0, err
	}
	p.Logger.Info().Str("file", outPath).Int("records", len(records)).Msg("wrote records")
	return FileWritten, nil
}

// WriteRecords writes records as an indented JSON array. Non-ASCII text is
// written as is.
func WriteRecords(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
