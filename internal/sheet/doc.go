// Package sheet holds the state of a dynamic table: an ordered set of typed
// columns and two row sequences kept structurally in sync.
//
// The visible copy is what the UI renders and may be sorted or filtered. The
// original copy is the source for searches and the target of ResetSearch. Row
// and column mutations apply to both copies; cell edits apply to the visible
// copy only, matching the widget this package models.
//
// A Sheet is owned by a single widget instance and is not safe for concurrent
// use.
package sheet
