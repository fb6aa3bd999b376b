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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidProgramEntry indicates a ProgramEntry failed validation.
	ErrInvalidProgramEntry = errors.New("invalid program entry")

	// ErrInvalidIgnoreRule indicates an IgnoreRule failed validation.
	ErrInvalidIgnoreRule = errors.New("invalid ignore rule")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyPath indicates a path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrInvalidProgramKind indicates an invalid ProgramKind value.
	ErrInvalidProgramKind = errors.New("invalid program kind")

	// ErrEmptyPattern indicates an ignore rule has no pattern.
	ErrEmptyPattern = errors.New("pattern cannot be empty")

	// ErrBadPattern indicates a regex ignore rule does not compile.
	ErrBadPattern = errors.New("pattern does not compile")
)
