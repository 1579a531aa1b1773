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

import "github.com/rs/zerolog"

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger (default: disabled).
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithNormalizer replaces the default LibreOffice normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(c *Converter) {
		c.normalizer = n
	}
}

// WithWorkers sets the pool size used when Config.Workers is zero
// (default: min(32, 2 × CPUs)).
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.workers = n
	}
}
