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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the format tag of a document source.
type Format string

const (
	FormatDocx        Format = "docx"
	FormatDoc         Format = "doc"
	FormatPDF         Format = "pdf"
	FormatUnsupported Format = ""
)

// Extension returns the canonical file extension of the format.
func (f Format) Extension() string {
	if f == FormatUnsupported {
		return ""
	}
	return "." + string(f)
}

// DocumentExtensions are the inputs of the text conversion batch.
var DocumentExtensions = []string{".docx", ".doc"}

// PDFExtensions are the inputs of the PDF to DOCX batch.
var PDFExtensions = []string{".pdf"}

// FormatOf classifies a path by its extension, case-insensitively.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx
	case ".doc":
		return FormatDoc
	case ".pdf":
		return FormatPDF
	}
	return FormatUnsupported
}

// acceptedMIME lists the detected content types each format may carry.
// Legacy .doc files are often RTF, OOXML, Word HTML, Word 2003 XML or MHT
// in disguise; the external converter copes with all of them.
var acceptedMIME = map[Format][]string{
	FormatDocx: {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
	},
	FormatDoc: {
		"application/msword",
		"application/x-ole-storage",
		"text/rtf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
		"text/html",
		"text/xml",
		"application/xml",
		"message/rfc822",
	},
	FormatPDF: {
		"application/pdf",
	},
}

// sniffContent checks that the bytes on disk look like the format the
// extension claims, so a corrupt file fails before any expensive work.
func sniffContent(path string, f Format) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return newError(KindIOFailure, path, fmt.Errorf("detect content type: %w", err))
	}
	for m := mtype; m != nil; m = m.Parent() {
		for _, want := range acceptedMIME[f] {
			if m.Is(want) {
				return nil
			}
		}
	}
	return newError(KindParseError, path, fmt.Errorf("content is %s, not a %s document", mtype.String(), f))
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
