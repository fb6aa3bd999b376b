// Package results holds the published result list and the selection cursor.
//
// Store is the single source of truth for what the display shows. Every
// accepted update replaces the whole list under one lock and emits exactly
// one structural-change notification; incremental add/remove events are
// never produced. Updates carrying a cancelled generation token are
// discarded, as are updates identical to the current content.
//
// Selection tracks the highlighted row. A structural change schedules a
// reset to the first row, which user navigation arriving first cancels.
// Single-step moves wrap around the list; page moves stop at the ends.
package results
