// Package program offers installed programs from the catalog as query results.
//
// The source keeps an in-memory snapshot of the catalog so every keystroke
// is answered without touching storage. Call Reload after each index run
// to pick up the new catalog.
package program
