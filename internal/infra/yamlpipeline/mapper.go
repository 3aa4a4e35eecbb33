package yamlpipeline

import (
	"fmt"
	"strings"

	"github.com/aalvaropc/kipu/internal/domain"
)

type yamlPipeline struct {
	Name    string            `yaml:"name"`
	Vars    map[string]string `yaml:"vars"`
	OnEmpty string            `yaml:"on_empty"`
	Steps   []yamlStep        `yaml:"steps"`
	Checks  yamlChecks        `yaml:"checks"`
}

type yamlStep struct {
	Name string `yaml:"name"`
	Op   string `yaml:"op"`

	Values []any `yaml:"values"`

	At     *int `yaml:"at"`
	Delete *int `yaml:"delete"`

	By    string `yaml:"by"`
	Order string `yaml:"order"`

	Transform *yamlTransform `yaml:"transform"`
	Predicate *yamlPredicate `yaml:"predicate"`

	Reduce string `yaml:"reduce"`
	Seed   any    `yaml:"seed"`

	With map[string]any `yaml:"with"`
	Keys []string       `yaml:"keys"`

	Path string `yaml:"path"`
	Var  string `yaml:"var"`
}

type yamlTransform struct {
	Path  string   `yaml:"path"`
	Add   *float64 `yaml:"add"`
	Mul   *float64 `yaml:"mul"`
	Upper bool     `yaml:"upper"`
	Lower bool     `yaml:"lower"`
	Trim  bool     `yaml:"trim"`
}

type yamlPredicate struct {
	Path   string   `yaml:"path"`
	Exists *bool    `yaml:"exists"`
	Eq     any      `yaml:"eq"`
	Ne     any      `yaml:"ne"`
	Gt     *float64 `yaml:"gt"`
	Lt     *float64 `yaml:"lt"`
}

type yamlChecks struct {
	Length   *int                         `yaml:"length"`
	JSONPath map[string]yamlJSONPathCheck `yaml:"jsonpath"`
}

type yamlJSONPathCheck struct {
	Exists bool `yaml:"exists"`
	Equals any  `yaml:"equals"`
}

func mapAndValidate(path string, yp yamlPipeline) (domain.Pipeline, error) {
	if strings.TrimSpace(yp.Name) == "" {
		return domain.Pipeline{}, invalidField(path, "name", "pipeline name is required")
	}

	onEmpty := domain.EmptyNoop
	switch strings.TrimSpace(yp.OnEmpty) {
	case "", string(domain.EmptyNoop):
	case string(domain.EmptyError):
		onEmpty = domain.EmptyError
	default:
		return domain.Pipeline{}, invalidField(path, "on_empty", fmt.Sprintf("unknown policy %q", yp.OnEmpty))
	}

	p := domain.Pipeline{
		Name:    yp.Name,
		Vars:    domain.Vars(yp.Vars),
		OnEmpty: onEmpty,
		Steps:   make([]domain.StepSpec, 0, len(yp.Steps)),
	}
	if p.Vars == nil {
		p.Vars = domain.Vars{}
	}

	for i, s := range yp.Steps {
		fieldPrefix := fmt.Sprintf("steps[%d]", i)

		if strings.TrimSpace(s.Op) == "" {
			return domain.Pipeline{}, invalidField(path, fieldPrefix+".op", "step op is required")
		}

		op, err := parseOp(s.Op)
		if err != nil {
			return domain.Pipeline{}, invalidField(path, fieldPrefix+".op", err.Error())
		}

		step := domain.StepSpec{
			Name:   s.Name,
			Op:     op,
			Values: normalizeValues(s.Values),
			At:     s.At,
			Delete: s.Delete,
			By:     s.By,
			Order:  domain.SortOrder(s.Order),
			Reduce: domain.ReduceOp(s.Reduce),
			Seed:   normalizeValue(s.Seed),
			With:   normalizeRecord(s.With),
			Keys:   s.Keys,
			Path:   s.Path,
			Var:    s.Var,
		}

		if s.Transform != nil {
			step.Transform = &domain.TransformSpec{
				Path:  s.Transform.Path,
				Add:   s.Transform.Add,
				Mul:   s.Transform.Mul,
				Upper: s.Transform.Upper,
				Lower: s.Transform.Lower,
				Trim:  s.Transform.Trim,
			}
		}

		if s.Predicate != nil {
			step.Predicate = &domain.PredicateSpec{
				Path:   s.Predicate.Path,
				Exists: s.Predicate.Exists,
				Eq:     normalizeValue(s.Predicate.Eq),
				Ne:     normalizeValue(s.Predicate.Ne),
				Gt:     s.Predicate.Gt,
				Lt:     s.Predicate.Lt,
			}
		}

		p.Steps = append(p.Steps, step)
	}

	p.Checks = domain.ChecksSpec{
		Length:   yp.Checks.Length,
		JSONPath: mapJSONPath(yp.Checks.JSONPath),
	}
	if p.Checks.JSONPath == nil {
		p.Checks.JSONPath = map[string]domain.JSONPathCheck{}
	}

	return p, nil
}

func parseOp(s string) (domain.StepOp, error) {
	op := domain.StepOp(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range domain.StepOps() {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown op %q", s)
}

func mapJSONPath(in map[string]yamlJSONPathCheck) map[string]domain.JSONPathCheck {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.JSONPathCheck, len(in))
	for k, v := range in {
		out[k] = domain.JSONPathCheck{Exists: v.Exists, Equals: normalizeValue(v.Equals)}
	}
	return out
}

// normalizeValue converts the yaml.v3 scalar types to their JSON-like
// equivalents so the engine only ever sees float64 numbers and
// map[string]any records.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case []any:
		return normalizeValues(t)
	case map[string]any:
		return normalizeRecord(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	default:
		return v
	}
}

func normalizeValues(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = normalizeValue(v)
	}
	return out
}

func normalizeRecord(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlpipeline.load",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("%s: %s", field, msg),
	}
}
