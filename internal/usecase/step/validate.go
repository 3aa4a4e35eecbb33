package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aalvaropc/kipu/internal/domain"
)

// Validate performs a static check of a step spec: known op and well-formed
// arguments. It never touches a document.
func Validate(spec domain.StepSpec) error {
	switch spec.Op {
	case domain.OpRest, domain.OpInitial, domain.OpReverse:
		return nil

	case domain.OpPrepend, domain.OpAppend:
		if len(spec.Values) == 0 {
			return invalid(spec, "requires at least one value")
		}
		return nil

	case domain.OpSort:
		if spec.Order != "" && spec.Order != domain.OrderAsc && spec.Order != domain.OrderDesc {
			return invalid(spec, fmt.Sprintf("unknown order %q", spec.Order))
		}
		return nil

	case domain.OpSplice:
		if spec.At == nil {
			return invalid(spec, "requires 'at'")
		}
		if spec.Delete != nil && *spec.Delete < 0 {
			return invalid(spec, "'delete' must be >= 0")
		}
		return nil

	case domain.OpMap:
		return validateTransform(spec)

	case domain.OpFilter:
		return validatePredicate(spec)

	case domain.OpReduce:
		switch spec.Reduce {
		case domain.ReduceSum, domain.ReduceMin, domain.ReduceMax,
			domain.ReduceCount, domain.ReduceConcat, domain.ReduceFirst, domain.ReduceLast:
			return nil
		case "":
			return invalid(spec, "requires a reduce op")
		default:
			return invalid(spec, fmt.Sprintf("unknown reduce op %q", spec.Reduce))
		}

	case domain.OpMerge:
		if len(spec.With) == 0 {
			return invalid(spec, "requires 'with'")
		}
		return nil

	case domain.OpWithout:
		if len(spec.Keys) == 0 {
			return invalid(spec, "requires 'keys'")
		}
		return nil

	case domain.OpPluck:
		if strings.TrimSpace(spec.Path) == "" || strings.TrimSpace(spec.Var) == "" {
			return invalid(spec, "requires 'path' and 'var'")
		}
		return nil

	default:
		return &domain.OpError{
			Op:   "step.validate",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown op %q", spec.Op),
		}
	}
}

func validateTransform(spec domain.StepSpec) error {
	t := spec.Transform
	if t == nil {
		return invalid(spec, "requires a transform")
	}

	numeric := t.Add != nil || t.Mul != nil
	stringy := t.Upper || t.Lower || t.Trim
	pathed := strings.TrimSpace(t.Path) != ""

	if numeric && stringy {
		return invalid(spec, "numeric and string transforms are exclusive")
	}
	if t.Upper && t.Lower {
		return invalid(spec, "'upper' and 'lower' are exclusive")
	}
	if !numeric && !stringy && !pathed {
		return invalid(spec, "transform sets nothing")
	}
	return nil
}

func validatePredicate(spec domain.StepSpec) error {
	p := spec.Predicate
	if p == nil {
		return invalid(spec, "requires a predicate")
	}

	set := 0
	if p.Exists != nil {
		set++
	}
	if p.Eq != nil {
		set++
	}
	if p.Ne != nil {
		set++
	}
	if p.Gt != nil {
		set++
	}
	if p.Lt != nil {
		set++
	}

	if set > 1 {
		return invalid(spec, "predicate comparisons are exclusive")
	}
	if set == 0 && strings.TrimSpace(p.Path) == "" {
		return invalid(spec, "predicate sets nothing")
	}
	return nil
}

func invalid(spec domain.StepSpec, msg string) error {
	name := spec.Name
	if strings.TrimSpace(name) == "" {
		name = string(spec.Op)
	}
	return &domain.OpError{
		Op:   "step.validate",
		Kind: domain.KindInvalidConfig,
		Err:  errors.New(name + ": " + string(spec.Op) + " " + msg),
	}
}
