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
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/docqa-go/qa"
)

var qaCmd = &cobra.Command{
	Use:   "qa [input-dir]",
	Short: "Generate question/answer records from text files",
	Long: `qa sends every .txt file in the input directory to an OpenAI-compatible chat
model and writes the returned pairs as Alpaca records (<name>.json) to the
output directory. The number of pairs requested grows with file size.
Files whose output already exists are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := viper.GetString("qa.input")
		if len(args) > 0 {
			in = args[0]
		}
		out := viper.GetString("qa.output")
		if in == "" || out == "" {
			return fmt.Errorf("both input and --output are required")
		}
		model := viper.GetString("qa.llm-model")
		if model == "" {
			return fmt.Errorf("no model: set --llm-model or DOCQA_QA_LLM_MODEL")
		}

		gen := qa.NewOpenAIGenerator(viper.GetString("qa.llm-base"), viper.GetString("qa.llm-key"), model)
		gen.MaxTokens = viper.GetInt("qa.max-tokens")
		var policy qa.CountPolicy = qa.DefaultPolicy
		if n := viper.GetInt("qa.pairs"); n > 0 {
			policy = qa.FixedPolicy(n)
		}
		p := &qa.Pipeline{Generator: gen, Policy: policy, Logger: logger}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		res, err := p.ProcessDir(ctx, in, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "done: %s\n", res)
		return nil
	},
}

func init() {
	qaCmd.Flags().StringP("input", "i", "", "directory of .txt files")
	qaCmd.Flags().StringP("output", "o", "", "directory for .json record files")
	qaCmd.Flags().String("llm-base", "", "OpenAI-compatible base URL (default: OpenAI)")
	qaCmd.Flags().String("llm-model", "", "model name")
	qaCmd.Flags().String("llm-key", "", "API key")
	qaCmd.Flags().Int("max-tokens", 2048, "maximum reply tokens")
	qaCmd.Flags().Int("pairs", 0, "pairs per file (0 = by file size)")

	bindFlags(qaCmd, "qa")
	rootCmd.AddCommand(qaCmd)
}
