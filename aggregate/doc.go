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


// Package aggregate merges per-source result batches into one ranked list.
//
// An Aggregator keeps a working list that is the union of the latest
// accepted batch from each source. Every merge replaces the entries of the
// batch's source, drops candidates matched by the ignore rules, orders the
// list by score (stable, so ties keep insertion order), caps it and hands
// it to a Publisher together with the generation token of the batch.
//
// Batches whose token has been cancelled are discarded whole. The
// Publisher is expected to re-check the token under its own lock, so a
// generation superseded between merge and publish is never shown.
//
// The package also provides CommandSource, a synthetic source exposing
// built-in commands such as "Reindex Programs".
package aggregate
