// Package filesystem finds files and folders by name below configured folders.
//
// Directory listings are cached in an LRU keyed by directory path and
// invalidated by fsnotify events, so repeated keystrokes over the same
// folders do not hit the disk. Each result carries the context menu
// entries configured for files, with "{path}" expanded.
package filesystem
