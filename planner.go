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
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Disposition is the action planned for a job before execution starts.
type Disposition int

const (
	// DispositionRun means the job will be converted.
	DispositionRun Disposition = iota
	// DispositionSkipExists means the destination exists and overwrite is off.
	DispositionSkipExists
	// DispositionConflict means an earlier source already claimed the
	// destination. The job fails without running.
	DispositionConflict
)

func (d Disposition) String() string {
	switch d {
	case DispositionSkipExists:
		return "skip-exists"
	case DispositionConflict:
		return "conflict"
	}
	return "run"
}

// Job is one planned conversion.
type Job struct {
	Source      string
	Dest        string
	Format      Format
	Disposition Disposition
	// ConflictsWith is the source that owns Dest when Disposition is
	// DispositionConflict.
	ConflictsWith string
}

// Target describes what a batch converts from and to.
type Target struct {
	// Extensions are the accepted input extensions, lowercase with the dot.
	Extensions []string
	// Ext is the extension of the produced files.
	Ext string
	// DefaultDir is the output directory created under a directory input
	// when no output root is configured.
	DefaultDir string
}

// TextTarget converts word-processor documents to plain text.
var TextTarget = Target{Extensions: DocumentExtensions, Ext: ".txt", DefaultDir: DefaultOutputDir}

// DocxTarget converts PDFs to DOCX.
var DocxTarget = Target{Extensions: PDFExtensions, Ext: ".docx", DefaultDir: "docx_out"}

// Plan is the job set of one batch.
type Plan struct {
	InputPath  string
	OutputPath string
	Jobs       []Job
}

// Total returns the number of planned jobs.
func (p *Plan) Total() int { return len(p.Jobs) }

// Runnable returns the number of jobs that will be converted.
func (p *Plan) Runnable() int { return p.count(DispositionRun) }

// Skipped returns the number of jobs whose output already exists.
func (p *Plan) Skipped() int { return p.count(DispositionSkipExists) }

// Conflicts returns the number of jobs whose destination is taken by another source.
func (p *Plan) Conflicts() int { return p.count(DispositionConflict) }

func (p *Plan) count(d Disposition) int {
	n := 0
	for _, j := range p.Jobs {
		if j.Disposition == d {
			n++
		}
	}
	return n
}

// Summary is the human-readable line printed before execution.
func (p *Plan) Summary() string {
	s := fmt.Sprintf("found %d documents, planning to convert %d, skipping %d existing",
		p.Total(), p.Runnable(), p.Skipped())
	if c := p.Conflicts(); c > 0 {
		s += fmt.Sprintf(", %d with conflicting output", c)
	}
	return s
}

// NewPlan discovers the inputs of cfg, maps each one to its destination and
// decides whether it runs. Parent directories of runnable destinations are
// created here, before any worker starts. When several sources map to one
// destination the first in sorted order keeps it and the others are planned
// as conflicts.
func NewPlan(cfg Config, target Target) (*Plan, error) {
	if cfg.InputPath == "" {
		return nil, newError(KindNoInputFound, "", errors.New("no input path configured"))
	}
	input, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return nil, newError(KindIOFailure, cfg.InputPath, err)
	}
	output := ""
	if cfg.OutputPath != "" {
		if output, err = filepath.Abs(cfg.OutputPath); err != nil {
			return nil, newError(KindIOFailure, cfg.OutputPath, err)
		}
	}

	sources, err := discover(input, output, target)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, newError(KindNoInputFound, input, fmt.Errorf("no %s files found", strings.Join(target.Extensions, "/")))
	}

	plan := &Plan{InputPath: input, OutputPath: output, Jobs: make([]Job, 0, len(sources))}
	owners := make(map[string]string, len(sources))
	for _, src := range sources {
		dest, err := mapDestination(src, input, output, target.Ext, target.DefaultDir)
		if err != nil {
			return nil, err
		}
		job := Job{Source: src, Dest: dest, Format: FormatOf(src), Disposition: DispositionRun}
		if prev, ok := owners[dest]; ok {
			job.Disposition = DispositionConflict
			job.ConflictsWith = prev
			plan.Jobs = append(plan.Jobs, job)
			continue
		}
		owners[dest] = src

		if !cfg.Overwrite && exists(dest) {
			job.Disposition = DispositionSkipExists
		} else if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, newError(KindIOFailure, dest, fmt.Errorf("create output directory: %w", err))
		}
		plan.Jobs = append(plan.Jobs, job)
	}
	return plan, nil
}

// discover lists the eligible sources under input, sorted. Normalizer
// scratch space and the output root are never scanned.
func discover(input, output string, target Target) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindNoInputFound, input, err)
		}
		return nil, newError(KindIOFailure, input, err)
	}
	if !info.IsDir() {
		if hasExtension(input, target.Extensions) {
			return []string{input}, nil
		}
		return nil, nil
	}

	outRoot := output
	if outRoot == "" {
		outRoot = filepath.Join(input, target.DefaultDir)
	}

	var sources []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != input && (d.Name() == ConvertedDirName || path == outRoot) {
				return filepath.SkipDir
			}
			return nil
		}
		// ~$name.docx is an editor lock file, not a document.
		if strings.HasPrefix(d.Name(), "~$") {
			return nil
		}
		if hasExtension(path, target.Extensions) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, newError(KindIOFailure, input, fmt.Errorf("scan input: %w", err))
	}
	sort.Strings(sources)
	return sources, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
