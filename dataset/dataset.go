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

// Package dataset splits, merges and checks JSON record files.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Split names, in output order.
const (
	Train = "train"
	Val   = "val"
	Test  = "test"
)

// Splits lists the shard names.
var Splits = []string{Train, Val, Test}

// DefaultSeed keeps shuffles reproducible across runs.
const DefaultSeed = 42

// Shards holds the records of each split.
type Shards struct {
	Train []json.RawMessage
	Val   []json.RawMessage
	Test  []json.RawMessage
}

// Get returns the records of the named split.
func (s Shards) Get(name string) []json.RawMessage {
	switch name {
	case Train:
		return s.Train
	case Val:
		return s.Val
	case Test:
		return s.Test
	}
	return nil
}

// Split divides records by size:
//   - 10 or more: shuffled 80/10/10
//   - 5 to 9: in order, train max(3, 80%), val max(1, half the rest), test the remainder
//   - 3 or 4: one train, one val, the rest test
//   - fewer: everything in train
func Split(records []json.RawMessage, seed int64) Shards {
	n := len(records)
	switch {
	case n >= 10:
		shuffled := append([]json.RawMessage(nil), records...)
		rand.New(rand.NewSource(seed)).Shuffle(n, func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		held := int(math.Ceil(float64(n) * 0.2))
		test := int(math.Ceil(float64(held) * 0.5))
		train := n - held
		return Shards{
			Train: shuffled[:train],
			Val:   shuffled[train : n-test],
			Test:  shuffled[n-test:],
		}
	case n >= 5:
		train := max(3, int(float64(n)*0.8))
		val := max(1, (n-train)/2)
		return Shards{
			Train: records[:train],
			Val:   records[train : train+val],
			Test:  records[train+val:],
		}
	case n >= 3:
		return Shards{Train: records[:1], Val: records[1:2], Test: records[2:]}
	}
	return Shards{Train: records}
}

// SplitDir splits every *.json array in inDir into outDir/{train,val,test}/<name>.json.
func SplitDir(inDir, outDir string, seed int64, logger zerolog.Logger) error {
	for _, s := range Splits {
		if err := os.MkdirAll(filepath.Join(outDir, s), 0o755); err != nil {
			return err
		}
	}
	paths, err := jsonFiles(inDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		records, err := readArray(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("skipping")
			continue
		}
		if len(records) == 0 {
			logger.Warn().Str("file", path).Msg("no records, skipping")
			continue
		}
		shards := Split(records, seed)
		name := filepath.Base(path)
		for _, s := range Splits {
			if err := writeArray(filepath.Join(outDir, s, name), shards.Get(s)); err != nil {
				return err
			}
		}
		logger.Info().Str("file", name).
			Int("total", len(records)).
			Int("train", len(shards.Train)).
			Int("val", len(shards.Val)).
			Int("test", len(shards.Test)).
			Msg("split")
	}
	return nil
}

// MergeSplits concatenates root/<split>/*.json into outDir/<split>.json for
// each split. Files that are not JSON arrays are skipped.
func MergeSplits(root, outDir string, logger zerolog.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, s := range Splits {
		paths, err := jsonFiles(filepath.Join(root, s))
		if err != nil {
			return err
		}
		n, err := MergeFiles(paths, filepath.Join(outDir, s+".json"), logger)
		if err != nil {
			return err
		}
		logger.Info().Str("split", s).Int("records", n).Msg("merged")
	}
	return nil
}

// MergeFiles concatenates the arrays in sources into out and returns the
// record count. Missing or malformed sources are logged and skipped.
func MergeFiles(sources []string, out string, logger zerolog.Logger) (int, error) {
	merged := []json.RawMessage{}
	for _, path := range sources {
		records, err := readArray(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("skipping")
			continue
		}
		merged = append(merged, records...)
	}
	if err := writeArray(out, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// Validate checks that path holds Alpaca records, either as one JSON array or
// as JSON Lines. It returns the record count.
func Validate(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	data = bytes.TrimSpace(data)

	if json.Valid(data) {
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return 0, errors.New("JSON content is not an array")
		}
		for i, r := range records {
			if err := validateRecord(r); err != nil {
				return 0, fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		return len(records), nil
	}
	if len(data) > 0 && data[0] == '[' {
		var records []json.RawMessage
		return 0, fmt.Errorf("decode array: %w", json.Unmarshal(data, &records))
	}

	n := 0
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := validateRecord(json.RawMessage(line)); err != nil {
			return 0, fmt.Errorf("line %d: %w", i+1, err)
		}
		n++
	}
	if n == 0 {
		return 0, errors.New("no records")
	}
	return n, nil
}

// FileCount is the number of records found in one file. Err is set when the
// file could not be read or decoded; Count is then zero.
type FileCount struct {
	Name  string
	Count int
	Err   error
}

// Stats summarizes the record counts of a directory of JSON files.
type Stats struct {
	Files []FileCount
	Total int
}

// Average returns the mean record count per file.
func (s Stats) Average() float64 {
	if len(s.Files) == 0 {
		return 0
	}
	return float64(s.Total) / float64(len(s.Files))
}

// MinMax returns the smallest and largest counts among readable files. ok is
// false when no file was readable.
func (s Stats) MinMax() (lo, hi int, ok bool) {
	for _, f := range s.Files {
		if f.Err != nil {
			continue
		}
		if !ok {
			lo, hi, ok = f.Count, f.Count, true
			continue
		}
		lo = min(lo, f.Count)
		hi = max(hi, f.Count)
	}
	return lo, hi, ok
}

// Count tallies the records of every *.json file in dir. An array counts its
// elements, any other non-empty value counts as one record. Unreadable files
// count as zero and carry their error.
func Count(dir string) (Stats, error) {
	var stats Stats
	info, err := os.Stat(dir)
	if err != nil {
		return stats, err
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%s is not a directory", dir)
	}
	paths, err := jsonFiles(dir)
	if err != nil {
		return stats, err
	}
	if len(paths) == 0 {
		return stats, fmt.Errorf("%s: %w", dir, ErrNoJSONFiles)
	}
	for _, path := range paths {
		n, err := countFile(path)
		stats.Files = append(stats.Files, FileCount{Name: filepath.Base(path), Count: n, Err: err})
		stats.Total += n
	}
	return stats, nil
}

// ErrNoJSONFiles is returned by Count for a directory without *.json files.
var ErrNoJSONFiles = errors.New("no .json files found")

func countFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case []any:
		return len(v), nil
	case map[string]any:
		if len(v) == 0 {
			return 0, nil
		}
	case string:
		if v == "" {
			return 0, nil
		}
	case bool:
		if !v {
			return 0, nil
		}
	case float64:
		if v == 0 {
			return 0, nil
		}
	case nil:
		return 0, nil
	}
	return 1, nil
}

func validateRecord(raw json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.New("not a JSON object")
	}
	for _, key := range []string{"instruction", "output"} {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("missing required field %q", key)
		}
	}
	if v, ok := obj["input"]; ok {
		if _, isString := v.(string); !isString {
			return errors.New(`field "input" is not a string`)
		}
	}
	return nil
}

func jsonFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func readArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("not a JSON array: %w", err)
	}
	return records, nil
}

func writeArray(path string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
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
