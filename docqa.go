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

// Package docqa converts folders of word-processor documents into plain text
// in parallel. Legacy .doc files go through LibreOffice first; .docx files
// are read directly. One bad document never stops the batch.
//
//	c := docqa.New(docqa.WithLogger(logger))
//	report, err := c.Run(ctx, docqa.Config{InputPath: "word", OutputPath: "txt"})
package docqa

import (
	"context"

	"github.com/rs/zerolog"
)

// Config selects what a batch converts.
type Config struct {
	// InputPath is a single document or a directory scanned recursively.
	InputPath string
	// OutputPath is the output file or root directory. Empty derives it
	// from InputPath.
	OutputPath string
	// Workers bounds concurrency. Zero uses the converter default.
	Workers int
	// Overwrite reconverts documents whose output already exists.
	Overwrite bool
}

// Converter is the batch conversion engine.
type Converter struct {
	logger     zerolog.Logger
	normalizer *Normalizer
	workers    int
}

// New creates a Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.normalizer == nil {
		c.normalizer = NewNormalizer(DefaultOfficeBinary, c.logger)
	}
	return c
}

// Plan discovers the documents of cfg without converting anything.
func (c *Converter) Plan(cfg Config) (*Plan, error) {
	return NewPlan(cfg, TextTarget)
}

// Run converts every .doc/.docx under cfg.InputPath to text. The error is
// non-nil only for failures that prevent the batch from starting; per-document
// failures are in the report.
func (c *Converter) Run(ctx context.Context, cfg Config) (*Report, error) {
	return c.run(ctx, cfg, TextTarget, c.ConvertJob)
}

// RunPDF converts every PDF under cfg.InputPath to .docx.
func (c *Converter) RunPDF(ctx context.Context, cfg Config) (*Report, error) {
	return c.run(ctx, cfg, DocxTarget, c.ConvertPDFJob)
}

func (c *Converter) run(ctx context.Context, cfg Config, target Target, convert ConvertFunc) (*Report, error) {
	plan, err := NewPlan(cfg, target)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("input", plan.InputPath).
		Int("total", plan.Total()).
		Int("run", plan.Runnable()).
		Int("skipped", plan.Skipped()).
		Msg(plan.Summary())

	if needsNormalizer(plan) {
		if _, err := c.normalizer.Check(); err != nil {
			c.logger.Warn().Err(err).Msg("legacy documents will fail")
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = c.workers
	}
	exec := &Executor{Workers: workers, Convert: convert, Logger: c.logger}
	report := exec.Execute(ctx, plan.Jobs)

	c.logger.Info().
		Str("run_id", report.RunID).
		Int("ok", report.OK).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("took", report.Finished.Sub(report.Started)).
		Msg(report.Summary())
	return report, nil
}

func needsNormalizer(plan *Plan) bool {
	for _, j := range plan.Jobs {
		if j.Disposition == DispositionRun && (j.Format == FormatDoc || j.Format == FormatPDF) {
			return true
		}
	}
	return false
}
