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

package extract

import "errors"

var (
	// ErrProcessing indicates that a document could not be turned into passages.
	ErrProcessing = errors.New("document processing failed")

	// ErrInvalidRequest indicates that a processing request is incomplete.
	ErrInvalidRequest = errors.New("invalid processing request")

	// ErrAnnotation indicates that the annotated copy could not be written.
	ErrAnnotation = errors.New("annotation failed")

	// ErrLoaderRequired indicates that a nil page loader was supplied.
	ErrLoaderRequired = errors.New("page loader is required")

	// ErrAnnotatorRequired indicates that a nil annotator was supplied.
	ErrAnnotatorRequired = errors.New("annotator is required")
)
