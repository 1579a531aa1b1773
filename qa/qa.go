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

// Package qa turns converted plain text into question/answer records in the
// Alpaca instruction format.
package qa

import (
	"context"
	"strings"
)

// Pair is one generated question and its answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Record is an Alpaca-format training record.
type Record struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Generator produces up to n pairs from text. Implementations call remote
// models and may fail or be rate limited.
type Generator interface {
	Generate(ctx context.Context, text string, n int) ([]Pair, error)
}

// CountPolicy decides how many pairs to request for a text of the given size.
type CountPolicy interface {
	Count(sizeBytes int64) int
}

// Step is one threshold of a StepPolicy: texts below UnderKB get Count pairs.
type Step struct {
	UnderKB float64
	Count   int
}

// StepPolicy is a step function of file size.
type StepPolicy struct {
	Steps []Step
	// Max applies to texts larger than every step.
	Max int
}

// DefaultPolicy asks for 5 pairs below 5 KB, rising to 50 from 600 KB.
var DefaultPolicy = StepPolicy{
	Steps: []Step{
		{UnderKB: 5, Count: 5},
		{UnderKB: 20, Count: 10},
		{UnderKB: 50, Count: 15},
		{UnderKB: 100, Count: 20},
		{UnderKB: 300, Count: 30},
		{UnderKB: 600, Count: 40},
	},
	Max: 50,
}

// Count implements CountPolicy. Steps must be in ascending order.
func (p StepPolicy) Count(sizeBytes int64) int {
	kb := float64(sizeBytes) / 1024
	for _, s := range p.Steps {
		if kb < s.UnderKB {
			return s.Count
		}
	}
	return p.Max
}

// FixedPolicy always requests the same number of pairs.
type FixedPolicy int

// Count implements CountPolicy.
func (p FixedPolicy) Count(int64) int { return int(p) }

// ToRecords converts pairs to Alpaca records, dropping pairs with a blank
// question or answer.
func ToRecords(pairs []Pair) []Record {
	records := make([]Record, 0, len(pairs))
	for _, p := range pairs {
		q := strings.TrimSpace(p.Question)
		a := strings.TrimSpace(p.Answer)
		if q == "" || a == "" {
			continue
		}
		records = append(records, Record{Instruction: q, Output: a})
	}
	return records
}
