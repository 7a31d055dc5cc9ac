package cel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/dyntable/internal/sheet"
)

// ErrNotBool is returned when a filter expression evaluates to something other than a bool.
var ErrNotBool = errors.New("filter expression must evaluate to a bool")

// Evaluator compiles row filter expressions and caches the resulting programs.
//
// Expressions see two variables:
//
//	row   map(string, list(dyn))  column name -> tokens (first column wins on duplicate names)
//	cells list(list(dyn))         tokens by column position
//
// Number cells expose their tokens as doubles and String cells as strings.
type Evaluator struct {
	env *cel.Env

	mu    sync.Mutex
	cache map[string]cel.Program
}

// NewEvaluator creates an evaluator with the standard library and the strings, lists and
// math extensions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newRowEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, cache: make(map[string]cel.Program)}, nil
}

func newRowEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable("row", cel.MapType(cel.StringType, cel.ListType(cel.DynType))),
		cel.Variable("cells", cel.ListType(cel.ListType(cel.DynType))),
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Compile parses and type-checks expr, reusing a cached program when expr was seen before.
func (e *Evaluator) Compile(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, sheet.ErrFilterExpression
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.cache[expr]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && out.Kind() != types.DynKind {
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	e.cache[expr] = prg
	return prg, nil
}

// Matcher compiles expr into a sheet.RowMatcher. Compilation errors are returned as
// *sheet.Error with KindExpression so the UI can show them like any other rejection.
func (e *Evaluator) Matcher(expr string) (sheet.RowMatcher, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		if sheet.KindOf(err) != 0 {
			return nil, err
		}
		return nil, &sheet.Error{
			Kind: sheet.KindExpression,
			Op:   sheet.OpFilter,
			Msg:  "Invalid filter expression: " + firstLine(err.Error()),
			Err:  err,
		}
	}
	return func(columns []sheet.Column, row sheet.Row) (bool, error) {
		out, _, err := prg.Eval(Activation(columns, row))
		if err != nil {
			return false, fmt.Errorf("eval error: %w", err)
		}
		b, ok := out.(types.Bool)
		if !ok {
			return false, fmt.Errorf("%w, got %v", ErrNotBool, ToGo(out))
		}
		return bool(b), nil
	}, nil
}

// Activation builds the variable bindings for one row.
func Activation(columns []sheet.Column, row sheet.Row) map[string]any {
	byName := make(map[string]any, len(columns))
	cells := make([]any, len(columns))
	for j, col := range columns {
		var values []any
		if j < len(row.Cells) {
			values = row.Cells[j].Values()
		} else {
			values = []any{}
		}
		cells[j] = values
		if _, seen := byName[col.Name]; !seen {
			byName[col.Name] = values
		}
	}
	return map[string]any{"row": byName, "cells": cells}
}

// ToGo converts CEL values to Go native types, recursing into lists.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	}

	if valuer, ok := val.(interface{ Value() any }); ok {
		inner := valuer.Value()
		if refSlice, ok := inner.([]ref.Val); ok {
			result := make([]any, len(refSlice))
			for i, elem := range refSlice {
				result[i] = ToGo(elem)
			}
			return result
		}
		return inner
	}
	return val
}

// DiscoverCELFunctions returns the sorted names of the functions and macros available to
// filter expressions, skipping operator-style internals.
func DiscoverCELFunctions() ([]string, error) {
	env, err := newRowEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	seen := make(map[string]bool)
	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		seen[fn.Name()] = true
	}
	for _, m := range env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		seen[m.Function()] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// isOperator filters out internal operator-style declarations that shouldn't be shown in UI.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

// GetCommonPatterns returns example filter expressions shown in the help overlay.
func GetCommonPatterns() []string {
	return []string{
		`row["Name"].exists(t, t.lowerAscii().contains("an"))`,
		`row["Age"].exists(n, n >= 30)`,
		`size(cells[0]) > 1`,
		`row["Score"].all(n, n < 100)`,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
