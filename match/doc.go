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


// Package match provides the scoring primitive used to rank launcher results.
//
// A Scorer is a pure function of (query, text). It returns an integer
// relevance score, where zero means "no match", together with the rune
// offsets of the matched characters for highlighting. Scorers hold no
// mutable state and are safe for concurrent use without synchronization.
package match
