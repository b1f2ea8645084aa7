// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import "errors"

var (
	// ErrNotFound indicates that the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")

	// ErrUnreadable indicates that the manifest exists but cannot be read.
	ErrUnreadable = errors.New("manifest unreadable")

	// ErrBaseNameCollision indicates that two distinct paths share a base name.
	ErrBaseNameCollision = errors.New("documents share a base name")
)
