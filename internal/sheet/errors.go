package sheet

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected.
type Kind int

const (
	// KindCapacity covers the column count limits (max 10, min 1).
	KindCapacity Kind = iota + 1
	// KindMissingSelection covers sort/search invoked without the required inputs.
	KindMissingSelection
	// KindTypeMismatch covers non-numeric sort columns and cell input that violates its column type.
	KindTypeMismatch
	// KindUnknownColumn covers a selected column name that no longer exists.
	KindUnknownColumn
	// KindIndex covers row/column positions outside the current table.
	KindIndex
	// KindExpression covers expression filters that fail to compile or evaluate.
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindMissingSelection:
		return "missing_selection"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindUnknownColumn:
		return "unknown_column"
	case KindIndex:
		return "index"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Operation names recorded on errors and in debug events.
const (
	OpAddColumn    = "add_column"
	OpDeleteColumn = "delete_column"
	OpAddRow       = "add_row"
	OpDeleteRow    = "delete_row"
	OpEditCell     = "edit_cell"
	OpSort         = "sort"
	OpSearch       = "search"
	OpResetSearch  = "reset_search"
	OpFilter       = "filter"
)

// Error is returned by every rejected Sheet operation. Msg is the text shown to the user.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	ErrMaxColumns         = &Error{Kind: KindCapacity, Op: OpAddColumn, Msg: fmt.Sprintf("You can add a maximum of %d columns!", MaxColumns)}
	ErrMinColumns         = &Error{Kind: KindCapacity, Op: OpDeleteColumn, Msg: "There should be at least 1 column!"}
	ErrColumnNameRequired = &Error{Kind: KindMissingSelection, Op: OpAddColumn, Msg: "Column name is required!"}
	ErrSortSelection      = &Error{Kind: KindMissingSelection, Op: OpSort, Msg: "Please select a column and sorting condition!"}
	ErrSortNotNumber      = &Error{Kind: KindTypeMismatch, Op: OpSort, Msg: "Sorting can only be applied to number columns."}
	ErrSearchSelection    = &Error{Kind: KindMissingSelection, Op: OpSearch, Msg: "Please select a column and enter a search value!"}
	ErrInvalidCell        = &Error{Kind: KindTypeMismatch, Op: OpEditCell, Msg: "invalid cell input"}
	ErrUnknownColumn      = &Error{Kind: KindUnknownColumn, Msg: "unknown column"}
	ErrColumnIndex        = &Error{Kind: KindIndex, Op: OpDeleteColumn, Msg: "column position out of range"}
	ErrRowIndex           = &Error{Kind: KindIndex, Msg: "row position out of range"}
	ErrFilterExpression   = &Error{Kind: KindExpression, Op: OpFilter, Msg: "Please enter a filter expression!"}

	// ErrNotANumber is wrapped by NewCell when a Number token does not parse as a finite number.
	ErrNotANumber = errors.New("not a finite number")
)

// KindOf returns the Kind of a sheet error, or 0 when err is not one.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNotice reports whether err should be surfaced as a muted notice instead of an error.
func IsNotice(err error) bool {
	return KindOf(err) == KindCapacity
}
