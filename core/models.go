package core

import (
	"encoding/binary"
	"slices"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog entries.
// It is derived from content so re-indexing the same program yields the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Icon references understood by the display layer.
const (
	IconProgram = "images/app.png"
	IconFolder  = "images/folder.png"
	IconFile    = "images/file.png"
	IconCommand = "images/command.png"
	IconMenu    = "images/list.png"
)

// DisplayInfo is the source-independent description of a result row.
type DisplayInfo struct {
	Title    string
	Subtitle string
	IconRef  string
}

// Payload is the source-specific data carried by a Candidate.
// The core never inspects a payload beyond this interface.
type Payload interface {
	Display() DisplayInfo
}

// ContextMenuProvider is implemented by payloads that offer secondary actions.
type ContextMenuProvider interface {
	ContextMenu() []MenuItem
}

// MenuItem is a secondary action offered for a result.
type MenuItem struct {
	Title   string
	IconRef string
	Command string   // executable to launch
	Args    []string // arguments, already expanded
}

// Candidate is a single scored result produced by a source.
type Candidate struct {
	Title         string
	Subtitle      string
	IconRef       string
	Score         int
	TitleSpans    []int // rune offsets of matched characters in Title
	SubtitleSpans []int // rune offsets of matched characters in Subtitle
	SourceID      string
	Payload       Payload // borrowed from the source, read-only
}

// SameContent reports whether two candidates render identically,
// highlight spans and payload display included.
func (c Candidate) SameContent(o Candidate) bool {
	return c.SourceID == o.SourceID &&
		c.Title == o.Title &&
		c.Subtitle == o.Subtitle &&
		c.IconRef == o.IconRef &&
		c.Score == o.Score &&
		slices.Equal(c.TitleSpans, o.TitleSpans) &&
		slices.Equal(c.SubtitleSpans, o.SubtitleSpans) &&
		samePayload(c.Payload, o.Payload)
}

// samePayload compares payloads by what they show and offer, so a payload
// rebuilt with the same data still counts as unchanged.
func samePayload(a, b Payload) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Display() != b.Display() {
		return false
	}
	return slices.EqualFunc(menuOf(a), menuOf(b), func(x, y MenuItem) bool {
		return x.Title == y.Title &&
			x.IconRef == y.IconRef &&
			x.Command == y.Command &&
			slices.Equal(x.Args, y.Args)
	})
}

func menuOf(p Payload) []MenuItem {
	if m, ok := p.(ContextMenuProvider); ok {
		return m.ContextMenu()
	}
	return nil
}

// ContextMenu returns the payload's menu items, or nil when it has none.
func (c Candidate) ContextMenu() []MenuItem {
	if p, ok := c.Payload.(ContextMenuProvider); ok {
		return p.ContextMenu()
	}
	return nil
}

// ProgramKind distinguishes how a catalog entry is launched.
type ProgramKind int

const (
	// ProgramKindExecutable is a directly runnable file.
	ProgramKindExecutable ProgramKind = iota + 1
	// ProgramKindShortcut is a link or desktop entry pointing elsewhere.
	ProgramKindShortcut
	// ProgramKindDirectory is a folder listed as an entry.
	ProgramKindDirectory
)

// ProgramEntry is an installed program in the catalog.
type ProgramEntry struct {
	Id        ID
	Name      string
	Path      string // full path to the program
	Kind      ProgramKind
	Enabled   bool
	IndexedAt time.Time
}

// EntryIDForPath returns the catalog ID for a program path.
func EntryIDForPath(path string) ID {
	return IDFromContent("program:" + path)
}

// Display implements Payload.
func (p *ProgramEntry) Display() DisplayInfo {
	icon := IconProgram
	if p.Kind == ProgramKindDirectory {
		icon = IconFolder
	}
	return DisplayInfo{Title: p.Name, Subtitle: p.Path, IconRef: icon}
}

// ContextMenu implements ContextMenuProvider.
func (p *ProgramEntry) ContextMenu() []MenuItem {
	dir := p.Path
	if i := strings.LastIndexAny(dir, `/\`); i > 0 {
		dir = dir[:i]
	}
	return []MenuItem{
		{Title: "Open containing folder", IconRef: IconFolder, Command: "xdg-open", Args: []string{dir}},
	}
}

// FileRecord is a file or folder found by a filesystem or external index source.
type FileRecord struct {
	Name     string
	FullPath string
	IsFolder bool
	Menus    []MenuItem // expanded context menu entries, nil for folders
}

// Display implements Payload.
func (f *FileRecord) Display() DisplayInfo {
	icon := IconFile
	if f.IsFolder {
		icon = IconFolder
	}
	return DisplayInfo{Title: f.Name, Subtitle: f.FullPath, IconRef: icon}
}

// ContextMenu implements ContextMenuProvider.
func (f *FileRecord) ContextMenu() []MenuItem {
	return f.Menus
}

// Command is a built-in action such as "Reindex Programs".
type Command struct {
	Title    string
	Subtitle string
	Run      func() error
}

// Display implements Payload.
func (c *Command) Display() DisplayInfo {
	return DisplayInfo{Title: c.Title, Subtitle: c.Subtitle, IconRef: IconCommand}
}

// IgnoreRule hides results whose title or subtitle matches Pattern.
type IgnoreRule struct {
	Pattern string `yaml:"pattern"`
	IsRegex bool   `yaml:"regex"`
}

// ProgramSource is a directory scanned when building the program catalog.
type ProgramSource struct {
	Location        string `yaml:"location"`
	Recursive       bool   `yaml:"recursive"`
	ShowDirsAsEntry bool   `yaml:"show_dirs"`
}

// IncludedFolder is a directory searched by the filesystem source.
type IncludedFolder struct {
	Path          string `yaml:"path"`
	MaxDepth      int    `yaml:"max_depth"` // 0 means unlimited
	IncludeHidden bool   `yaml:"include_hidden"`
}

// ContextMenuTemplate defines a file context menu entry.
// "{path}" in Argument is replaced with the file's full path.
type ContextMenuTemplate struct {
	Name     string `yaml:"name"`
	Command  string `yaml:"command"`
	Argument string `yaml:"argument"`
}

// Checkpoint records the outcome of the last catalog index run.
type Checkpoint struct {
	LastIndexTime time.Time
	EntryCount    int
}
