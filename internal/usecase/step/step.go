package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/kipu/internal/domain"
)

// Apply executes a single resolved step against doc and returns the new
// document value plus any vars plucked along the way.
//
// Policy:
// - doc is never modified; every op goes through the domain seq/record
//   functions, which return fresh containers.
// - policy is the pipeline's boundary policy for rest/initial on empty input.
func Apply(spec domain.StepSpec, doc any, policy domain.EmptyPolicy) (any, domain.Vars, error) {
	switch spec.Op {
	case domain.OpRest:
		return applyRest(spec, doc, policy)
	case domain.OpInitial:
		return applyInitial(spec, doc, policy)
	case domain.OpPrepend:
		return applyPrepend(spec, doc)
	case domain.OpAppend:
		return applyAppend(spec, doc)
	case domain.OpReverse:
		return applyReverse(spec, doc)
	case domain.OpSort:
		return applySort(spec, doc)
	case domain.OpSplice:
		return applySplice(spec, doc)
	case domain.OpMap:
		return applyMap(spec, doc)
	case domain.OpFilter:
		return applyFilter(spec, doc)
	case domain.OpReduce:
		return applyReduce(spec, doc)
	case domain.OpMerge:
		return applyMerge(spec, doc)
	case domain.OpWithout:
		return applyWithout(spec, doc)
	case domain.OpPluck:
		return applyPluck(spec, doc)
	default:
		return nil, nil, &domain.OpError{
			Op:   "step.apply",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown op %q", spec.Op),
		}
	}
}

func applyRest(spec domain.StepSpec, doc any, policy domain.EmptyPolicy) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	if len(s) == 0 && policy == domain.EmptyError {
		return nil, nil, emptyErr(spec)
	}
	return domain.Rest(s), nil, nil
}

func applyInitial(spec domain.StepSpec, doc any, policy domain.EmptyPolicy) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	if len(s) == 0 && policy == domain.EmptyError {
		return nil, nil, emptyErr(spec)
	}
	return domain.Initial(s), nil, nil
}

func applyPrepend(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	return domain.Prepend(s, spec.Values...), nil, nil
}

func applyAppend(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	return domain.Append(s, spec.Values...), nil, nil
}

func applyReverse(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	return domain.Reverse(s), nil, nil
}

func applySort(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}

	desc := spec.Order == domain.OrderDesc
	less := func(a, b any) bool {
		ka, aok := sortKey(spec.By, a)
		kb, bok := sortKey(spec.By, b)
		// Elements without a usable key sort first so they stay visible.
		if aok != bok {
			res := !aok
			if desc {
				return !res
			}
			return res
		}
		cmp, comparable := compareValues(ka, kb)
		if !comparable {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}

	return domain.SortBy(s, less), nil, nil
}

func applySplice(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	if spec.At == nil {
		return nil, nil, &domain.OpError{
			Op:   "step.splice",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("splice requires 'at'"),
		}
	}
	del := 0
	if spec.Delete != nil {
		del = *spec.Delete
	}

	out, err := domain.Splice(s, *spec.At, del, spec.Values...)
	if err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

func applyMap(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	if spec.Transform == nil {
		return nil, nil, &domain.OpError{
			Op:   "step.map",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("map requires a transform"),
		}
	}

	out := make([]any, 0, len(s))
	for i, elem := range s {
		v, terr := transform(*spec.Transform, elem)
		if terr != nil {
			return nil, nil, wrapElem(terr, spec, i)
		}
		out = append(out, v)
	}
	return out, nil, nil
}

func applyFilter(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	if spec.Predicate == nil {
		return nil, nil, &domain.OpError{
			Op:   "step.filter",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("filter requires a predicate"),
		}
	}

	keep := func(elem any) bool {
		return evalPredicate(*spec.Predicate, elem)
	}
	return domain.Filter(s, keep), nil, nil
}

func applyReduce(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	s, err := asSeq(spec, doc)
	if err != nil {
		return nil, nil, err
	}

	out, rerr := reduce(spec.Reduce, spec.Seed, s)
	if rerr != nil {
		return nil, nil, rerr
	}
	return out, nil, nil
}

func applyMerge(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	rec, err := asRecord(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	return domain.Merge(rec, spec.With), nil, nil
}

func applyWithout(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	rec, err := asRecord(spec, doc)
	if err != nil {
		return nil, nil, err
	}
	return domain.Without(rec, spec.Keys...), nil, nil
}

// applyPluck stores the addressed value as a runtime var; the document itself
// flows through unchanged.
func applyPluck(spec domain.StepSpec, doc any) (any, domain.Vars, error) {
	expr := strings.TrimSpace(spec.Path)
	if expr == "" || strings.TrimSpace(spec.Var) == "" {
		return nil, nil, &domain.OpError{
			Op:   "step.pluck",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("pluck requires 'path' and 'var'"),
		}
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, nil, &domain.OpError{
			Op:   "step.pluck",
			Kind: domain.KindExecution,
			Path: expr,
			Err:  err,
		}
	}
	if isEmptyValue(val) {
		return nil, nil, &domain.OpError{
			Op:   "step.pluck",
			Kind: domain.KindNotFound,
			Path: expr,
			Err:  errors.New("no value found"),
		}
	}

	s, convErr := toString(val)
	if convErr != nil {
		return nil, nil, &domain.OpError{
			Op:   "step.pluck",
			Kind: domain.KindTypeMismatch,
			Path: expr,
			Err:  convErr,
		}
	}

	return doc, domain.Vars{spec.Var: s}, nil
}

func emptyErr(spec domain.StepSpec) error {
	return &domain.OpError{
		Op:   "step." + string(spec.Op),
		Kind: domain.KindOutOfBounds,
		Err:  domain.ErrEmptySequence,
	}
}

func wrapElem(err error, spec domain.StepSpec, idx int) error {
	kind := domain.KindExecution
	var oe *domain.OpError
	if errors.As(err, &oe) {
		kind = oe.Kind
	}
	return &domain.OpError{
		Op:   "step." + string(spec.Op),
		Kind: kind,
		Err:  fmt.Errorf("element %d: %w", idx, err),
	}
}
