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

import (
	"fmt"
	"regexp"
)

// ValidateProgramEntry validates a ProgramEntry according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Path must not be empty
//   - Kind must be valid
//
// NOT validated:
//   - ID (recomputed from Path by the indexer)
//   - IndexedAt (set by the repository)
func ValidateProgramEntry(entry *ProgramEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidProgramEntry)
	}

	if entry.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProgramEntry, ErrEmptyName)
	}

	if entry.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProgramEntry, ErrEmptyPath)
	}

	if err := ValidateProgramKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProgramEntry, err)
	}

	return nil
}

// ValidateProgramKind validates that a ProgramKind has a valid value.
func ValidateProgramKind(kind ProgramKind) error {
	switch kind {
	case ProgramKindExecutable, ProgramKindShortcut, ProgramKindDirectory:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidProgramKind, kind)
}

// ValidateIgnoreRule validates an IgnoreRule.
// Regex rules must compile with the regexp package.
func ValidateIgnoreRule(rule IgnoreRule) error {
	if rule.Pattern == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIgnoreRule, ErrEmptyPattern)
	}
	if rule.IsRegex {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: %w: %v", ErrInvalidIgnoreRule, ErrBadPattern, err)
		}
	}
	return nil
}
