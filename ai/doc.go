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

// Package ai provides the embedding abstraction used when building an index.
//
// Embeddings are optional. When configured, the index builder sends passage
// texts to an Embedder in batches and stores the vectors next to the passages.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test double for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// openai.NewEmbedder returns the ai.Embedder interface. mock.NewMockEmbedder
// returns the concrete type so tests can inject behavior and inspect calls:
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextsFunc = ...
//	count := mockEmbed.CallCount()
package ai
