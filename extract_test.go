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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentText(t *testing.T) {
	abcd := Table(
		[]Cell{TextCell("a"), TextCell("b")},
		[]Cell{TextCell("c"), TextCell("d")},
	)

	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{"table", []Block{abcd}, "a\tb\nc\td\n"},
		{"paragraph then table", []Block{Paragraph("Hello"), abcd}, "Hello\na\tb\nc\td\n"},
		{"empty document", nil, "\n"},
		{
			name:   "only empty blocks",
			blocks: []Block{Paragraph(""), Paragraph("  \t "), Table([]Cell{TextCell(""), TextCell(" ")}), Paragraph("")},
			want:   "\n",
		},
		{
			name:   "empty paragraphs between content are dropped",
			blocks: []Block{Paragraph("one"), Paragraph(""), Paragraph("two")},
			want:   "one\ntwo\n",
		},
		{
			name:   "paragraph whitespace trimmed",
			blocks: []Block{Paragraph("  padded\r  ")},
			want:   "padded\n",
		},
		{
			name: "cell paragraphs joined by space",
			blocks: []Block{Table([]Cell{
				{Blocks: []Block{Paragraph(" first "), Paragraph(""), Paragraph("second")}},
				TextCell("x"),
			})},
			want: "first second\tx\n",
		},
		{
			name:   "trailing empty cells trimmed",
			blocks: []Block{Table([]Cell{TextCell("a"), TextCell(""), TextCell("")}, []Cell{TextCell(""), TextCell("b")})},
			want:   "a\n\tb\n",
		},
		{
			name: "nested table flattens into its cell",
			blocks: []Block{Table([]Cell{
				{Blocks: []Block{
					Paragraph("outer"),
					Table([]Cell{TextCell("n1"), TextCell("n2")}, []Cell{TextCell("n3")}),
				}},
				TextCell("right"),
			})},
			want: "outer n1 n2 n3\tright\n",
		},
		{
			name:   "trailing empty rows dropped",
			blocks: []Block{Table([]Cell{TextCell("a")}, []Cell{TextCell("")}), Paragraph("after")},
			want:   "a\nafter\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Blocks: tt.blocks}
			assert.Equal(t, tt.want, doc.Text())
		})
	}
}

func TestParseDocx(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "paragraph then table",
			body: para("Hello") + tbl(row(cell(para("a")), cell(para("b"))), row(cell(para("c")), cell(para("d")))),
			want: "Hello\na\tb\nc\td\n",
		},
		{
			name: "runs concatenate verbatim",
			body: `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r><w:r><w:t xml:space="preserve"> and plain</w:t></w:r></w:p>`,
			want: "Bold and plain\n",
		},
		{
			name: "tabs breaks and hyphens inside runs",
			body: `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t><w:noBreakHyphen/><w:t>d</w:t></w:r></w:p>`,
			want: "a\tb\nc-d\n",
		},
		{
			name: "page break carries no text",
			body: `<w:p><w:r><w:t>before</w:t><w:br w:type="page"/><w:t>after</w:t></w:r></w:p>`,
			want: "beforeafter\n",
		},
		{
			name: "hyperlink and insertion text kept, deletion dropped",
			body: `<w:p><w:r><w:t xml:space="preserve">see </w:t></w:r>` +
				`<w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink>` +
				`<w:del><w:r><w:delText>gone</w:delText></w:r></w:del>` +
				`<w:ins><w:r><w:t xml:space="preserve"> now</w:t></w:r></w:ins></w:p>`,
			want: "see link now\n",
		},
		{
			name: "images dropped without placeholder",
			body: `<w:p><w:r><w:drawing><wp:inline xmlns:wp="urn:wp"><wp:docPr descr="chart"/></wp:inline></w:drawing></w:r></w:p>` + para("text"),
			want: "text\n",
		},
		{
			name: "block content control is transparent",
			body: `<w:sdt><w:sdtPr/><w:sdtContent>` + para("inside") + `</w:sdtContent></w:sdt>` + para("outside"),
			want: "inside\noutside\n",
		},
		{
			name: "nested table in cell",
			body: tbl(row(cell(para("top")+tbl(row(cell(para("x")), cell(para("y"))))+`<w:p/>`), cell(para("z")))),
			want: "top x y\tz\n",
		},
		{
			name: "horizontal merge repeats the cell",
			body: tbl(
				row(`<w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr>`+para("wide")+`</w:tc>`, cell(para("c"))),
				row(cell(para("1")), cell(para("2")), cell(para("3"))),
			),
			want: "wide\twide\tc\n1\t2\t3\n",
		},
		{
			name: "vertical merge repeats the cell above",
			body: tbl(
				row(`<w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr>`+para("tall")+`</w:tc>`, cell(para("a"))),
				row(`<w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>`, cell(para("b"))),
			),
			want: "tall\ta\ntall\tb\n",
		},
		{
			name: "only empty content",
			body: `<w:p/><w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>` + tbl(row(cell(`<w:p/>`), cell(`<w:p/>`))),
			want: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := docxBytes(t, tt.body)
			doc, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Text())
		})
	}
}

func TestParseDocxBlocks(t *testing.T) {
	data := docxBytes(t, para("Hello")+tbl(row(cell(para("a")))))
	doc, err := ParseDocx(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, BlockParagraph, doc.Blocks[0].Kind)
	assert.Equal(t, "Hello", doc.Blocks[0].Text)
	assert.Equal(t, BlockTable, doc.Blocks[1].Kind)
	require.Len(t, doc.Blocks[1].Rows, 1)
	require.Len(t, doc.Blocks[1].Rows[0], 1)
	assert.Equal(t, []Block{Paragraph("a")}, doc.Blocks[1].Rows[0][0].Blocks)
}

func TestParseDocxDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.docx")
	writeDocx(t, path, para("α β γ")+tbl(row(cell(para("1")), cell(para("2")))))

	first, err := ParseDocxFile(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ParseDocxFile(path)
		require.NoError(t, err)
		assert.Equal(t, first.Text(), again.Text())
	}
}

func TestParseDocxErrors(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "bad.docx")
	writeFile(t, notZip, []byte("not a zip archive"))
	_, err := ParseDocxFile(notZip)
	assert.True(t, IsKind(err, KindParseError), "got %v", err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	noBody := filepath.Join(dir, "nobody.docx")
	writeFile(t, noBody, buf.Bytes())
	_, err = ParseDocxFile(noBody)
	assert.True(t, IsKind(err, KindParseError), "got %v", err)

	_, err = ParseDocxFile(filepath.Join(dir, "missing.docx"))
	assert.True(t, IsKind(err, KindIOFailure), "got %v", err)
}
