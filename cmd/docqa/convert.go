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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	docqa "github.com/nicholasgasior/docqa-go"
)

type batchRunner func(ctx context.Context, c *docqa.Converter, cfg docqa.Config) (*docqa.Report, error)

var convertCmd = newBatchCommand("convert", "Convert .doc/.docx documents to plain text",
	`convert extracts the text of every .doc and .docx file under the input path,
keeping paragraph and table order. Tables become tab-separated lines. The
directory layout of the input is mirrored under the output root (default:
<input>/txt_out). Existing outputs are skipped unless --overwrite is set.

Legacy .doc files are converted to .docx with LibreOffice (soffice) first.`,
	func(ctx context.Context, c *docqa.Converter, cfg docqa.Config) (*docqa.Report, error) {
		return c.Run(ctx, cfg)
	})

var pdfCmd = newBatchCommand("pdf2docx", "Convert PDF files to .docx with LibreOffice",
	`pdf2docx converts every PDF under the input path to .docx, mirroring the
directory layout under the output root (default: <input>/docx_out). The
result can be fed to "docqa convert".`,
	func(ctx context.Context, c *docqa.Converter, cfg docqa.Config) (*docqa.Report, error) {
		return c.RunPDF(ctx, cfg)
	})

func newBatchCommand(use, short, long string, run batchRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [input]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, use, run)
	}

	cmd.Flags().StringP("input", "i", "", "input file or directory")
	cmd.Flags().StringP("output", "o", "", "output file or root directory")
	cmd.Flags().IntP("workers", "w", 0, "parallel conversions (0 = min(32, 2 x CPUs))")
	cmd.Flags().Bool("overwrite", false, "reconvert documents whose output exists")
	cmd.Flags().String("soffice", docqa.DefaultOfficeBinary, "LibreOffice executable")
	cmd.Flags().Duration("timeout", docqa.DefaultNormalizeTimeout, "timeout of one LibreOffice conversion")
	cmd.Flags().String("work-dir", "", "directory for intermediate .docx files (default: _converted_docx next to each source)")
	cmd.Flags().String("report", "", "write a YAML report of every job to this file")
	cmd.Flags().Bool("fail-on-job-error", false, "exit non-zero when any document fails")

	bindFlags(cmd, use)
	rootCmd.AddCommand(cmd)
	return cmd
}

func runBatch(cmd *cobra.Command, args []string, prefix string, run batchRunner) error {
	key := func(name string) string { return prefix + "." + name }

	cfg := docqa.Config{
		InputPath:  viper.GetString(key("input")),
		OutputPath: viper.GetString(key("output")),
		Workers:    viper.GetInt(key("workers")),
		Overwrite:  viper.GetBool(key("overwrite")),
	}
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
	if cfg.InputPath == "" {
		return fmt.Errorf("no input: pass a path or --input")
	}

	norm := docqa.NewNormalizer(viper.GetString(key("soffice")), logger)
	norm.Timeout = viper.GetDuration(key("timeout"))
	norm.WorkDir = viper.GetString(key("work-dir"))
	c := docqa.New(docqa.WithLogger(logger), docqa.WithNormalizer(norm))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := run(ctx, c, cfg)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)

	if path := viper.GetString(key("report")); path != "" {
		if err := writeReport(path, report); err != nil {
			return err
		}
		logger.Info().Str("file", path).Msg("wrote report")
	}
	if viper.GetBool(key("fail-on-job-error")) && report.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", report.Failed, len(report.Outcomes))
	}
	return nil
}

func printReport(w io.Writer, report *docqa.Report) {
	failures := report.Failures()
	if len(failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, o := range failures {
			fmt.Fprintf(w, "  %s\n    %s\n", o.Source, o.Error)
		}
	}
	fmt.Fprintln(w, report.Summary())
}

func writeReport(path string, report *docqa.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
