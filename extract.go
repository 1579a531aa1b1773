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
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/nicholasgasior/docqa-go/internal/ooxml"
)

// BlockKind tags the variant held by a Block.
type BlockKind int

const (
	// BlockParagraph carries Text.
	BlockParagraph BlockKind = iota + 1
	// BlockTable carries Rows.
	BlockTable
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockTable:
		return "table"
	}
	return "unknown"
}

// Block is one unit of document content: a paragraph or a table.
type Block struct {
	Kind BlockKind
	Text string
	Rows [][]Cell
}

// Cell is a table cell. Cells hold blocks of their own, so tables nest.
type Cell struct {
	Blocks []Block
}

// Paragraph builds a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// Table builds a table block.
func Table(rows ...[]Cell) Block {
	return Block{Kind: BlockTable, Rows: rows}
}

// TextCell builds a cell holding a single paragraph.
func TextCell(text string) Cell {
	return Cell{Blocks: []Block{Paragraph(text)}}
}

// Document is the block sequence of a parsed word-processor document, top to bottom.
type Document struct {
	Blocks []Block
}

// ParseDocxFile reads and parses a .docx file.
func ParseDocxFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindIOFailure, path, fmt.Errorf("read DOCX: %w", err))
	}
	doc, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newError(KindParseError, path, err)
	}
	return doc, nil
}

// ParseDocx parses a WordprocessingML package into blocks.
func ParseDocx(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX ZIP: %w", err)
	}

	root, err := ooxml.ParsePart(zr, ooxml.DocumentPart)
	if err != nil {
		return nil, err
	}
	if root.Local() != "document" {
		return nil, fmt.Errorf("unexpected root element %q in %s", root.Local(), ooxml.DocumentPart)
	}
	body := root.Child("body")
	if body == nil {
		return nil, fmt.Errorf("no body in %s", ooxml.DocumentPart)
	}

	return &Document{Blocks: blocksOf(body)}, nil
}

// blocksOf collects the paragraphs and tables directly inside a container
// (body or table cell). Block-level content controls are transparent.
func blocksOf(parent *ooxml.Element) []Block {
	var blocks []Block
	for i := range parent.Children {
		child := &parent.Children[i]
		switch child.Local() {
		case "p":
			blocks = append(blocks, Paragraph(paragraphText(child)))
		case "tbl":
			blocks = append(blocks, tableBlock(child))
		case "sdt":
			if content := child.Child("sdtContent"); content != nil {
				blocks = append(blocks, blocksOf(content)...)
			}
		}
	}
	return blocks
}

func paragraphText(p *ooxml.Element) string {
	var b strings.Builder
	collectRuns(p, &b)
	return strings.TrimSpace(normalizeText(b.String()))
}

// collectRuns appends the text of every run in e, descending into inline
// wrappers. Deleted text lives in w:del and is skipped.
func collectRuns(e *ooxml.Element, b *strings.Builder) {
	for i := range e.Children {
		child := &e.Children[i]
		switch child.Local() {
		case "r":
			writeRun(child, b)
		case "hyperlink", "ins", "smartTag", "fldSimple", "customXml", "sdt", "sdtContent", "moveTo":
			collectRuns(child, b)
		}
	}
}

func writeRun(r *ooxml.Element, b *strings.Builder) {
	for i := range r.Children {
		child := &r.Children[i]
		switch child.Local() {
		case "t":
			b.WriteString(child.Content)
		case "tab", "ptab":
			b.WriteByte('\t')
		case "cr":
			b.WriteByte('\n')
		case "br":
			// Page and column breaks carry no text.
			if typ, ok := child.Attr("type"); !ok || typ == "textWrapping" {
				b.WriteByte('\n')
			}
		case "noBreakHyphen":
			b.WriteByte('-')
		}
	}
}

// tableBlock lowers a w:tbl. Horizontally merged cells repeat once per grid
// column they span; vertical-merge continuations repeat the cell above.
func tableBlock(tbl *ooxml.Element) Block {
	var rows [][]Cell
	above := make(map[int]Cell)

	for i := range tbl.Children {
		tr := &tbl.Children[i]
		if tr.Local() != "tr" {
			continue
		}
		var row []Cell
		col := 0
		for j := range tr.Children {
			tc := &tr.Children[j]
			if tc.Local() != "tc" {
				continue
			}
			cell := Cell{Blocks: blocksOf(tc)}
			span, merge := cellProps(tc)
			if merge == "continue" {
				if prev, ok := above[col]; ok {
					cell = prev
				}
			}
			for k := 0; k < span; k++ {
				row = append(row, cell)
				above[col+k] = cell
			}
			col += span
		}
		rows = append(rows, row)
	}
	return Table(rows...)
}

func cellProps(tc *ooxml.Element) (span int, merge string) {
	span = 1
	pr := tc.Child("tcPr")
	if pr == nil {
		return span, ""
	}
	if gs := pr.Child("gridSpan"); gs != nil {
		if v, ok := gs.Attr("val"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 1 {
				span = n
			}
		}
	}
	if vm := pr.Child("vMerge"); vm != nil {
		merge = "continue"
		if v, ok := vm.Attr("val"); ok && v == "restart" {
			merge = "restart"
		}
	}
	return span, merge
}

// Text renders the document as plain text: non-empty blocks joined by a
// newline, with exactly one trailing newline.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return finishOutput(strings.Join(parts, "\n"))
}

func renderBlock(b Block) string {
	switch b.Kind {
	case BlockParagraph:
		return strings.TrimSpace(normalizeText(b.Text))
	case BlockTable:
		return renderTable(b.Rows)
	}
	return ""
}

// renderTable writes one line per row with cells separated by tabs.
func renderTable(rows [][]Cell) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, cellText(c))
		}
		lines = append(lines, strings.TrimRightFunc(strings.Join(cells, "\t"), unicode.IsSpace))
	}
	out := strings.Join(lines, "\n")
	if strings.TrimSpace(out) == "" {
		return ""
	}
	return strings.TrimRight(out, "\n")
}

// cellText joins the non-empty texts of a cell's blocks with single spaces.
// A nested table is flattened the same way, so a cell stays on one line.
func cellText(c Cell) string {
	parts := make([]string, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		if s := flatText(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func flatText(b Block) string {
	switch b.Kind {
	case BlockParagraph:
		return strings.TrimSpace(normalizeText(b.Text))
	case BlockTable:
		var parts []string
		for _, row := range b.Rows {
			for _, c := range row {
				if s := cellText(c); s != "" {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}
