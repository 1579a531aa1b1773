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

// Package ooxml holds the small amount of Office Open XML plumbing shared by
// the document readers: ZIP member access and a generic element tree.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// NSWordprocessingML is the main WordprocessingML namespace.
const NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DocumentPart is the main story of a WordprocessingML package.
const DocumentPart = "word/document.xml"

// ErrPartNotFound is returned when a named member is missing from the package.
var ErrPartNotFound = errors.New("part not found")

// Element is a generic XML element. Children keep document order.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
	Content  string     `xml:",chardata"`
}

// Local returns the local part of the element's name.
func (e *Element) Local() string {
	return e.XMLName.Local
}

// Child returns the first direct child with the given local name, or nil.
func (e *Element) Child(local string) *Element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == local {
			return &e.Children[i]
		}
	}
	return nil
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Find walks the tree depth-first and returns the first element with the
// given local name, including e itself.
func (e *Element) Find(local string) *Element {
	if e.XMLName.Local == local {
		return e
	}
	for i := range e.Children {
		if found := e.Children[i].Find(local); found != nil {
			return found
		}
	}
	return nil
}

// ReadFileFromZip reads a file from a zip archive.
func ReadFileFromZip(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrPartNotFound)
}

// ParsePart reads a member of the package and decodes it into an element tree.
func ParsePart(zr *zip.Reader, name string) (*Element, error) {
	data, err := ReadFileFromZip(zr, name)
	if err != nil {
		return nil, err
	}
	var root Element
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &root, nil
}
