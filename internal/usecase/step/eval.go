package step

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/kipu/internal/domain"
)

// transform applies one map-step transform to a single element.
func transform(t domain.TransformSpec, elem any) (any, error) {
	v := elem
	if strings.TrimSpace(t.Path) != "" {
		got, err := jsonpath.Get(t.Path, elem)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "step.transform",
				Kind: domain.KindNotFound,
				Path: t.Path,
				Err:  err,
			}
		}
		v = got
	}

	if t.Add != nil || t.Mul != nil {
		n, ok := toNumber(v)
		if !ok {
			return nil, typeErr("step.transform", "number", v)
		}
		if t.Mul != nil {
			n *= *t.Mul
		}
		if t.Add != nil {
			n += *t.Add
		}
		return n, nil
	}

	if t.Upper || t.Lower || t.Trim {
		s, ok := v.(string)
		if !ok {
			return nil, typeErr("step.transform", "string", v)
		}
		if t.Trim {
			s = strings.TrimSpace(s)
		}
		if t.Upper {
			s = strings.ToUpper(s)
		}
		if t.Lower {
			s = strings.ToLower(s)
		}
		return s, nil
	}

	// Path-only transform: plain per-element projection.
	return v, nil
}

// evalPredicate decides whether a filter step keeps elem.
// A predicate that cannot address its target keeps nothing: missing paths
// fail exists checks and never satisfy comparisons.
func evalPredicate(p domain.PredicateSpec, elem any) bool {
	target := elem
	found := true
	if strings.TrimSpace(p.Path) != "" {
		got, err := jsonpath.Get(p.Path, elem)
		if err != nil || isEmptyValue(got) {
			found = false
		} else {
			target = got
		}
	}

	if p.Exists != nil {
		return found == *p.Exists
	}
	if !found {
		return false
	}

	switch {
	case p.Eq != nil:
		cmp, ok := compareValues(target, p.Eq)
		return ok && cmp == 0
	case p.Ne != nil:
		cmp, ok := compareValues(target, p.Ne)
		return ok && cmp != 0
	case p.Gt != nil:
		n, ok := toNumber(target)
		return ok && n > *p.Gt
	case p.Lt != nil:
		n, ok := toNumber(target)
		return ok && n < *p.Lt
	default:
		// No comparison set: presence of the target is the condition.
		return found
	}
}

// reduce folds a sequence into a single value per op.
func reduce(op domain.ReduceOp, seed any, s []any) (any, error) {
	switch op {
	case domain.ReduceSum:
		acc := 0.0
		if seed != nil {
			n, ok := toNumber(seed)
			if !ok {
				return nil, typeErr("step.reduce", "numeric seed", seed)
			}
			acc = n
		}
		for i, v := range s {
			n, ok := toNumber(v)
			if !ok {
				return nil, elemTypeErr(i, "number", v)
			}
			acc += n
		}
		return acc, nil

	case domain.ReduceMin, domain.ReduceMax:
		if len(s) == 0 {
			return seed, nil
		}
		best, ok := toNumber(s[0])
		if !ok {
			return nil, elemTypeErr(0, "number", s[0])
		}
		for i, v := range s[1:] {
			n, ok := toNumber(v)
			if !ok {
				return nil, elemTypeErr(i+1, "number", v)
			}
			if (op == domain.ReduceMin && n < best) || (op == domain.ReduceMax && n > best) {
				best = n
			}
		}
		return best, nil

	case domain.ReduceCount:
		return float64(len(s)), nil

	case domain.ReduceConcat:
		var b strings.Builder
		if seed != nil {
			sv, ok := seed.(string)
			if !ok {
				return nil, typeErr("step.reduce", "string seed", seed)
			}
			b.WriteString(sv)
		}
		for i, v := range s {
			sv, err := toString(v)
			if err != nil {
				return nil, elemTypeErr(i, "string", v)
			}
			b.WriteString(sv)
		}
		return b.String(), nil

	case domain.ReduceFirst:
		if len(s) == 0 {
			return seed, nil
		}
		return s[0], nil

	case domain.ReduceLast:
		if len(s) == 0 {
			return seed, nil
		}
		return s[len(s)-1], nil

	default:
		return nil, &domain.OpError{
			Op:   "step.reduce",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown reduce op %q", op),
		}
	}
}

func sortKey(by string, elem any) (any, bool) {
	if strings.TrimSpace(by) == "" {
		return elem, true
	}
	got, err := jsonpath.Get(by, elem)
	if err != nil || isEmptyValue(got) {
		return nil, false
	}
	return got, true
}

// compareValues orders two scalars: numbers numerically, strings and bools
// lexically/by-truth. Mixed or non-scalar operands are not comparable.
func compareValues(a, b any) (int, bool) {
	if na, aok := toNumber(a); aok {
		nb, bok := toNumber(b)
		if !bok {
			return 0, false
		}
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	if sa, aok := a.(string); aok {
		sb, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}

	if ba, aok := a.(bool); aok {
		bb, bok := b.(bool)
		if !bok {
			return 0, false
		}
		if ba == bb {
			return 0, true
		}
		if !ba {
			return -1, true
		}
		return 1, true
	}

	return 0, false
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

func asSeq(spec domain.StepSpec, doc any) ([]any, error) {
	s, ok := doc.([]any)
	if !ok {
		return nil, typeErr("step."+string(spec.Op), "sequence", doc)
	}
	return s, nil
}

func asRecord(spec domain.StepSpec, doc any) (map[string]any, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, typeErr("step."+string(spec.Op), "record", doc)
	}
	return m, nil
}

func typeErr(op, want string, got any) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindTypeMismatch,
		Err:  fmt.Errorf("expected %s, got %T", want, got),
	}
}

func elemTypeErr(idx int, want string, got any) error {
	return &domain.OpError{
		Op:   "step.reduce",
		Kind: domain.KindTypeMismatch,
		Err:  fmt.Errorf("element %d: expected %s, got %T", idx, want, got),
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

func toString(v any) (string, error) {
	// Common case: jsonpath returns a slice with 1 element
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", errors.New("empty array")
		}
		if len(arr) == 1 {
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		// fallback: do not fail silently, but still allow odd scalars through
		return fmt.Sprint(t), nil
	}
}
