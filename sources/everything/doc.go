// Package everything queries an external file index such as locate or the
// Everything command line client.
//
// The index command is a template: "{query}" is replaced by the query text
// and "{max}" by the result cap. Each output line is a full path, optionally
// carrying Everything-style highlight markup where "*" toggles highlighting.
package everything
