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


// Package storage provides the storage abstraction layer for the program catalog.
//
// This package defines repository interfaces that decouple catalog persistence
// from indexing and searching. The BadgerDB implementation lives in the badger
// subpackage.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	repo, err := badger.NewCatalogRepository(backend)  // returns storage.CatalogRepository
//
// Internal helpers may return concrete types since they're only used within
// the implementation package.
//
// # Architecture
//
//   - Repository: operations shared by all repositories
//   - CatalogRepository: installed program entries
//   - CheckpointRepository: outcome of the last index run
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repo, checkpoints, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// Long iterations check their context once per entry and stop with the
// context's error once it is done.
package storage
