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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/docqa-go/dataset"
)

var splitCmd = &cobra.Command{
	Use:   "split <input-dir> <output-dir>",
	Short: "Split record files into train/val/test shards",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dataset.SplitDir(args[0], args[1], viper.GetInt64("split.seed"), logger)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <output> [sources...]",
	Short: "Merge shards into one file per split, or merge files into one",
	Long: `With --splits-root, merge concatenates <root>/{train,val,test}/*.json into
<output>/{train,val,test}.json. Otherwise it concatenates the given source
files into the single file <output>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if root := viper.GetString("merge.splits-root"); root != "" {
			return dataset.MergeSplits(root, args[0], logger)
		}
		if len(args) < 2 {
			return fmt.Errorf("no sources to merge")
		}
		n, err := dataset.MergeFiles(args[1:], args[0], logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "merged %d records into %s\n", n, args[0])
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a dataset file holds instruction/output records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := dataset.Validate(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, format ok\n", args[0], n)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <dir>",
	Short: "Count the records in every .json file of a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := dataset.Count(args[0])
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func printStats(w io.Writer, stats dataset.Stats) {
	for _, f := range stats.Files {
		if f.Err != nil {
			logger.Warn().Err(f.Err).Str("file", f.Name).Msg("could not count records")
		}
		fmt.Fprintf(w, "%-40s %d\n", f.Name, f.Count)
	}
	fmt.Fprintf(w, "files: %d\n", len(stats.Files))
	fmt.Fprintf(w, "records: %d\n", stats.Total)
	fmt.Fprintf(w, "average per file: %.2f\n", stats.Average())
	if lo, hi, ok := stats.MinMax(); ok {
		fmt.Fprintf(w, "max per file: %d\n", hi)
		fmt.Fprintf(w, "min per file: %d\n", lo)
	}
}

func init() {
	splitCmd.Flags().Int64("seed", dataset.DefaultSeed, "shuffle seed")
	bindFlags(splitCmd, "split")
	mergeCmd.Flags().String("splits-root", "", "directory holding train/val/test subdirectories")
	bindFlags(mergeCmd, "merge")

	rootCmd.AddCommand(splitCmd, mergeCmd, validateCmd, countCmd)
}
