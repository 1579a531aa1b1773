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
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is created under a directory input when no output root is given.
const DefaultOutputDir = "txt_out"

// MapDestination computes where the converted form of src goes.
//
// For a single-file input, an outputRoot that already carries targetExt is
// used verbatim, an existing directory outputRoot receives <stem><targetExt>,
// and otherwise the result sits next to the source. For a directory input the
// path of src relative to inputRoot is mirrored under outputRoot, or under
// inputRoot/txt_out when outputRoot is empty.
//
// The result is absolute. Its parent directory may not exist yet.
func MapDestination(src, inputRoot, outputRoot, targetExt string) (string, error) {
	return mapDestination(src, inputRoot, outputRoot, targetExt, DefaultOutputDir)
}

func mapDestination(src, inputRoot, outputRoot, targetExt, defaultDir string) (string, error) {
	info, err := os.Stat(inputRoot)
	if err != nil {
		return "", newError(KindIOFailure, inputRoot, fmt.Errorf("stat input: %w", err))
	}

	if !info.IsDir() {
		if outputRoot != "" && strings.EqualFold(filepath.Ext(outputRoot), targetExt) {
			return filepath.Abs(outputRoot)
		}
		base := filepath.Dir(src)
		if outputRoot != "" {
			if fi, err := os.Stat(outputRoot); err == nil && fi.IsDir() {
				base = outputRoot
			}
		}
		return filepath.Abs(filepath.Join(base, swapExt(filepath.Base(src), targetExt)))
	}

	rel, err := filepath.Rel(inputRoot, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", newError(KindIOFailure, src, fmt.Errorf("source is outside input root %s", inputRoot))
	}
	root := outputRoot
	if root == "" {
		root = filepath.Join(inputRoot, defaultDir)
	}
	return filepath.Abs(filepath.Join(root, swapExt(rel, targetExt)))
}

func swapExt(p, ext string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}
