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


// Package catalog builds the installed-program catalog.
//
// An Indexer scans the configured program sources in parallel, recognises
// programs by file suffix or executable bit, and atomically replaces the
// catalog stored in a storage.CatalogRepository. Each run records a
// checkpoint with the time of the last index. RunPeriodic performs a
// startup index after a short delay followed by periodic reindexes, and
// Trigger serves user-requested reindexes subject to a rate limit.
package catalog
