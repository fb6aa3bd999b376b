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


package catalog

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired is returned when a catalog repository is not provided.
	ErrRepositoryRequired = errors.New("catalog repository required")

	// ErrEmptySource is returned when a program source has no location.
	ErrEmptySource = errors.New("program source has no location")

	// ErrRateLimited is returned when a triggered reindex arrives too soon.
	ErrRateLimited = errors.New("reindex rate limited")

	// ErrIndexRunning is returned when a triggered reindex finds another in progress.
	ErrIndexRunning = errors.New("index already running")
)
