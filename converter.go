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
	"os"
	"path/filepath"
)

// ConvertFile converts one document to text at dst, regardless of whether
// dst exists.
func (c *Converter) ConvertFile(ctx context.Context, src, dst string) error {
	return c.ConvertJob(ctx, Job{Source: src, Dest: dst, Format: FormatOf(src)})
}

// ConvertJob is the text pipeline of one job: check the content, normalize
// legacy documents, extract, write.
func (c *Converter) ConvertJob(ctx context.Context, job Job) error {
	src := job.Source
	switch job.Format {
	case FormatDocx:
		if err := sniffContent(src, FormatDocx); err != nil {
			return err
		}
	case FormatDoc:
		if err := sniffContent(src, FormatDoc); err != nil {
			return err
		}
		normalized, err := c.normalizer.Normalize(ctx, src)
		if err != nil {
			return err
		}
		src = normalized
	default:
		return newError(KindUnsupportedFormat, src, fmt.Errorf("extension %q is not .doc or .docx", filepath.Ext(src)))
	}

	doc, err := ParseDocxFile(src)
	if err != nil {
		return err
	}
	return writeFileAtomic(job.Dest, []byte(doc.Text()))
}

// ConvertPDFJob converts one PDF to .docx at the job destination.
func (c *Converter) ConvertPDFJob(ctx context.Context, job Job) error {
	if job.Format != FormatPDF {
		return newError(KindUnsupportedFormat, job.Source, fmt.Errorf("extension %q is not .pdf", filepath.Ext(job.Source)))
	}
	if err := sniffContent(job.Source, FormatPDF); err != nil {
		return err
	}
	return c.normalizer.ConvertPDF(ctx, job.Source, job.Dest)
}

// writeFileAtomic writes through a temporary sibling so an interrupted run
// never leaves a partial file that a later run would skip as done.
func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError(KindIOFailure, dst, fmt.Errorf("create output directory: %w", err))
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return newError(KindIOFailure, dst, fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return newError(KindIOFailure, dst, fmt.Errorf("write output: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return newError(KindIOFailure, dst, fmt.Errorf("close output: %w", err))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return newError(KindIOFailure, dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return newError(KindIOFailure, dst, fmt.Errorf("rename output: %w", err))
	}
	return nil
}
