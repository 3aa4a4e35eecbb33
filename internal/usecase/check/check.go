package check

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/kipu/internal/domain"
)

// Length checks that the output document is a sequence of the expected length.
func Length(expected int, doc any) domain.CheckResult {
	s, ok := doc.([]any)
	if !ok {
		return domain.CheckResult{
			Name:    "length",
			Passed:  false,
			Message: fmt.Sprintf("expected a sequence of length %d, got %T", expected, doc),
		}
	}
	if len(s) == expected {
		return domain.CheckResult{
			Name:    "length",
			Passed:  true,
			Message: fmt.Sprintf("length %d", expected),
		}
	}
	return domain.CheckResult{
		Name:    "length",
		Passed:  false,
		Message: fmt.Sprintf("expected length %d, got %d", expected, len(s)),
	}
}

// Evaluate applies the checks spec against the output document.
// JSONPath expressions are evaluated in sorted order for stable output.
func Evaluate(spec domain.ChecksSpec, doc any) []domain.CheckResult {
	var out []domain.CheckResult

	if spec.Length != nil {
		out = append(out, Length(*spec.Length, doc))
	}

	if len(spec.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(spec.JSONPath))
	for expr := range spec.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	for _, expr := range exprs {
		c := spec.JSONPath[expr]
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, c, val, getErr)...)
	}

	return out
}

func jsonPathChecks(expr string, c domain.JSONPathCheck, val any, getErr error) []domain.CheckResult {
	var out []domain.CheckResult
	if c.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if c.Equals != nil {
		out = append(out, checkEquals(expr, val, getErr, c.Equals))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("invalid jsonpath %q: %v", expr, getErr),
		}
	}
	if isEmptyValue(val) {
		return domain.CheckResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.exists",
		Passed:  true,
		Message: fmt.Sprintf("jsonpath %q exists", expr),
	}
}

func checkEquals(expr string, val any, getErr error, expected any) domain.CheckResult {
	if getErr != nil {
		return domain.CheckResult{
			Name:    "jsonpath.equals",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, getErr),
		}
	}
	if equalValues(val, expected) {
		return domain.CheckResult{
			Name:    "jsonpath.equals",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q equals %v", expr, expected),
		}
	}
	return domain.CheckResult{
		Name:    "jsonpath.equals",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected %v, got %v", expr, expected, val),
	}
}

// equalValues compares JSON-like values, treating all numbers as float64.
func equalValues(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, bok := toNumber(b)
		return bok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
