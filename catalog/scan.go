package catalog

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/launchit/core"
)

// scanner finds programs below a program source.
type scanner struct {
	suffixes map[string]bool
}

func newScanner(suffixes []string) *scanner {
	s := &scanner{suffixes: make(map[string]bool, len(suffixes))}
	for _, suffix := range suffixes {
		s.suffixes[strings.ToLower(strings.TrimPrefix(suffix, "."))] = true
	}
	return s
}

// scan walks src, checking ctx once per directory entry.
// A missing root yields no entries and no error.
func (s *scanner) scan(ctx context.Context, src core.ProgramSource) ([]*core.ProgramEntry, error) {
	root := filepath.Clean(src.Location)
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []*core.ProgramEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subtrees are skipped
			if path != root && d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if src.ShowDirsAsEntry {
				entries = append(entries, &core.ProgramEntry{
					Name:    d.Name(),
					Path:    path,
					Kind:    core.ProgramKindDirectory,
					Enabled: true,
				})
			}
			if !src.Recursive || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if entry := s.program(path, d); entry != nil {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// program returns the catalog entry for a file, or nil if it is not a program.
func (s *scanner) program(path string, d fs.DirEntry) *core.ProgramEntry {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))

	if ext == "desktop" {
		if !s.suffixes[ext] {
			return nil
		}
		display, hidden := readDesktopEntry(path)
		if hidden {
			return nil
		}
		if display != "" {
			name = display
		}
		return &core.ProgramEntry{Name: name, Path: path, Kind: core.ProgramKindShortcut, Enabled: true}
	}

	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || (!isExecutable(info.Mode()) && !s.suffixes[ext]) {
			return nil
		}
		return &core.ProgramEntry{Name: name, Path: path, Kind: core.ProgramKindShortcut, Enabled: true}
	}

	if !d.Type().IsRegular() {
		return nil
	}
	if !s.suffixes[ext] {
		info, err := d.Info()
		if err != nil || !isExecutable(info.Mode()) {
			return nil
		}
	}
	return &core.ProgramEntry{Name: name, Path: path, Kind: core.ProgramKindExecutable, Enabled: true}
}

func isExecutable(mode fs.FileMode) bool {
	return mode.IsRegular() && mode.Perm()&0111 != 0
}

// readDesktopEntry returns the Name of a freedesktop entry and whether it
// asks to be hidden from menus.
func readDesktopEntry(path string) (name string, hidden bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	inMain := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inMain = line == "[Desktop Entry]"
			continue
		}
		if !inMain {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if name == "" {
				name = strings.TrimSpace(value)
			}
		case "NoDisplay", "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				hidden = true
			}
		}
	}
	return name, hidden
}
