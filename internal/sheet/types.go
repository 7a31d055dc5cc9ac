package sheet

import (
	"fmt"
	"strings"
)

// MaxColumns is the largest number of columns a sheet accepts.
const MaxColumns = 10

// ColumnType is the declared type of a column. It decides how cell input is validated.
type ColumnType string

const (
	TypeString ColumnType = "String"
	TypeNumber ColumnType = "Number"
)

// ColumnTypes lists the supported types in selector order.
var ColumnTypes = []ColumnType{TypeString, TypeNumber}

// ParseColumnType accepts "String" or "Number" in any letter case.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return TypeString, nil
	case "number":
		return TypeNumber, nil
	default:
		return "", fmt.Errorf("invalid column type %q (expected String or Number)", s)
	}
}

// Column is a named, typed slot shared by every row. Names need not be unique.
type Column struct {
	Name string     `yaml:"name" json:"name" toml:"name"`
	Type ColumnType `yaml:"type" json:"type" toml:"type"`
}

// Condition selects the sort direction.
type Condition string

const (
	// ConditionGreater sorts larger values first.
	ConditionGreater Condition = "greater"
	// ConditionLess sorts smaller values first.
	ConditionLess Condition = "less"
)

// Conditions lists the sort conditions in selector order.
var Conditions = []Condition{ConditionGreater, ConditionLess}

// Label returns the text shown in the condition selector.
func (c Condition) Label() string {
	switch c {
	case ConditionGreater:
		return "Greater than or equal to"
	case ConditionLess:
		return "Less than or equal to"
	default:
		return string(c)
	}
}

// ParseCondition accepts "greater" or "less"; an empty string is returned as-is so callers
// can report a missing selection.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "greater", "desc", "descending":
		return ConditionGreater, nil
	case "less", "asc", "ascending":
		return ConditionLess, nil
	default:
		return "", fmt.Errorf("invalid sort condition %q (expected greater or less)", s)
	}
}

// Row is one record. Cells has one entry per column, in column order.
type Row struct {
	ID    string
	Cells []Cell
}

// Clone returns a copy of the row that shares no slice storage with r.
func (r Row) Clone() Row {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	return Row{ID: r.ID, Cells: cells}
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
