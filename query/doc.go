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


// Package query fans a launcher query out to independent sources.
//
// Every call to Coordinator.Submit starts a new generation: the previous
// generation's Token is cancelled and a fresh one is created under a single
// lock, so at most one token is live at any time. One task per enabled
// Source is then run on a worker pool. Sources observe cancellation through
// the token's context and are expected to poll it once per candidate.
//
// Each finished source call produces exactly one Batch, which is handed to
// a Merger. Batches from superseded generations still reach the Merger; it
// is the Merger's job to discard them, which is cheap and idempotent.
package query
