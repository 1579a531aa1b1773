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
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Status is the resolved state of a job.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one job.
type Outcome struct {
	Source   string        `yaml:"source"`
	Dest     string        `yaml:"dest"`
	Status   Status        `yaml:"status"`
	Kind     ErrorKind     `yaml:"kind,omitempty"`
	Error    string        `yaml:"error,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
}

// Report is the final state of a batch. Outcome order is not meaningful.
type Report struct {
	RunID    string    `yaml:"run_id"`
	Started  time.Time `yaml:"started"`
	Finished time.Time `yaml:"finished"`
	OK       int       `yaml:"ok"`
	Failed   int       `yaml:"failed"`
	Skipped  int       `yaml:"skipped"`
	Outcomes []Outcome `yaml:"outcomes"`
}

// Summary is the human-readable line printed after execution.
func (r *Report) Summary() string {
	return fmt.Sprintf("done: ok %d, failed %d, skipped %d", r.OK, r.Failed, r.Skipped)
}

// Failures returns the failed outcomes.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			out = append(out, o)
		}
	}
	return out
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func (r *Report) tally() {
	r.OK, r.Failed, r.Skipped = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusOK:
			r.OK++
		case StatusFail:
			r.Failed++
		case StatusSkipped:
			r.Skipped++
		}
	}
}

// ConvertFunc performs one job. Errors are recorded, never propagated.
type ConvertFunc func(ctx context.Context, job Job) error

// DefaultWorkers is min(32, 2 × CPUs).
func DefaultWorkers() int {
	return min(32, 2*runtime.NumCPU())
}

// Executor runs planned jobs on a bounded pool of goroutines.
type Executor struct {
	// Workers bounds concurrency. Zero means DefaultWorkers.
	Workers int
	Convert ConvertFunc
	Logger  zerolog.Logger
}

// Execute resolves every job to exactly one Outcome. Skipped and conflicting
// jobs never occupy a worker. It returns once all jobs have finished.
func (e *Executor) Execute(ctx context.Context, jobs []Job) *Report {
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Started:  time.Now(),
		Outcomes: make([]Outcome, 0, len(jobs)),
	}
	var mu sync.Mutex
	record := func(o Outcome) {
		mu.Lock()
		report.Outcomes = append(report.Outcomes, o)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, job := range jobs {
		switch job.Disposition {
		case DispositionSkipExists:
			e.Logger.Debug().Str("src", job.Source).Str("dest", job.Dest).Msg("skipping, output exists")
			record(Outcome{Source: job.Source, Dest: job.Dest, Status: StatusSkipped, Error: "exists"})
			continue
		case DispositionConflict:
			err := newError(KindDestinationConflict, job.Dest, fmt.Errorf("output already taken by %s", job.ConflictsWith))
			e.Logger.Warn().Str("src", job.Source).Str("kind", string(err.Kind)).Msg(err.Error())
			record(Outcome{Source: job.Source, Dest: job.Dest, Status: StatusFail, Kind: err.Kind, Error: err.Error()})
			continue
		}
		job := job
		g.Go(func() error {
			record(e.runJob(ctx, job))
			return nil
		})
	}
	_ = g.Wait()

	report.Finished = time.Now()
	report.tally()
	return report
}

// runJob is the failure boundary of a job: errors and panics become a
// failed Outcome.
func (e *Executor) runJob(ctx context.Context, job Job) (o Outcome) {
	start := time.Now()
	o = Outcome{Source: job.Source, Dest: job.Dest, Status: StatusOK}
	defer func() {
		if r := recover(); r != nil {
			o.Status = StatusFail
			o.Kind = KindInternal
			o.Error = fmt.Sprintf("panic: %v", r)
		}
		o.Duration = time.Since(start)
		if o.Status == StatusFail {
			e.Logger.Warn().Str("src", job.Source).Str("kind", string(o.Kind)).Msg(o.Error)
		} else {
			e.Logger.Debug().Str("src", job.Source).Str("dest", job.Dest).Dur("took", o.Duration).Msg("converted")
		}
	}()

	err := ctx.Err()
	if err == nil {
		err = e.Convert(ctx, job)
	}
	if err != nil {
		o.Status = StatusFail
		o.Kind = KindOf(err)
		o.Error = err.Error()
	}
	return o
}
