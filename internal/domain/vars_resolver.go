package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VarResolver resolves {{var}} placeholders in strings and JSON-like values.
// It supports built-ins: {{$timestamp}} and {{$uuid}}.
//
// This lives in domain because it does not depend on YAML/FS/JSONPath. Only stdlib.
type VarResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.uuidV4 = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:    time.Now,
		uuidV4: uuidV4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for a single "resolution session" (one
// pipeline apply) so repeated {{$uuid}} across multiple steps stays consistent.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
	inner    *VarResolver
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	ts := strconv.FormatInt(r.now().Unix(), 10)

	u, err := r.uuidV4()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.uuid",
			Kind: KindExecution,
			Err:  err,
		}
	}

	baseCopy := Vars{}
	for k, v := range vars {
		baseCopy[k] = v
	}

	return &RuntimeResolver{
		base: baseCopy,
		builtins: Vars{
			"$timestamp": ts,
			"$uuid":      u,
		},
		inner: r,
	}, nil
}

// AddVars layers additional vars (e.g., pluck results) on top of the base set.
func (rr *RuntimeResolver) AddVars(vars Vars) {
	for k, v := range vars {
		rr.base[k] = v
	}
}

// ResolveString resolves placeholders in a string.
// Supported tokens: {{limit}}, {{key}}, {{$timestamp}}, {{$uuid}}.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return rr.inner.resolveStringWith(rr.base, rr.builtins, s)
}

// ResolveStep resolves placeholders in the string arguments of a step.
// It returns a copy (does not mutate input).
func (rr *RuntimeResolver) ResolveStep(step StepSpec) (StepSpec, error) {
	out := step

	if step.Values != nil {
		vals, err := rr.ResolveJSONValue(step.Values)
		if err != nil {
			return StepSpec{}, wrapField(err, "step.values")
		}
		out.Values = vals.([]any)
	}

	if step.With != nil {
		withVal, err := rr.ResolveJSONValue(map[string]any(step.With))
		if err != nil {
			return StepSpec{}, wrapField(err, "step.with")
		}
		out.With = withVal.(map[string]any)
	}

	by, err := rr.ResolveString(step.By)
	if err != nil {
		return StepSpec{}, wrapField(err, "step.by")
	}
	out.By = by

	path, err := rr.ResolveString(step.Path)
	if err != nil {
		return StepSpec{}, wrapField(err, "step.path")
	}
	out.Path = path

	if step.Seed != nil {
		seed, err := rr.ResolveJSONValue(step.Seed)
		if err != nil {
			return StepSpec{}, wrapField(err, "step.seed")
		}
		out.Seed = seed
	}

	if step.Transform != nil {
		t := *step.Transform
		tp, err := rr.ResolveString(t.Path)
		if err != nil {
			return StepSpec{}, wrapField(err, "step.transform.path")
		}
		t.Path = tp
		out.Transform = &t
	}

	if step.Predicate != nil {
		p := *step.Predicate
		pp, err := rr.ResolveString(p.Path)
		if err != nil {
			return StepSpec{}, wrapField(err, "step.predicate.path")
		}
		p.Path = pp
		if p.Eq != nil {
			eq, err := rr.ResolveJSONValue(p.Eq)
			if err != nil {
				return StepSpec{}, wrapField(err, "step.predicate.eq")
			}
			p.Eq = eq
		}
		if p.Ne != nil {
			ne, err := rr.ResolveJSONValue(p.Ne)
			if err != nil {
				return StepSpec{}, wrapField(err, "step.predicate.ne")
			}
			p.Ne = ne
		}
		out.Predicate = &p
	}

	return out, nil
}

// ResolveJSONValue recursively resolves string values inside JSON-like structures.
// Supported types: map[string]any, []any, string, numbers/bools/nil (left unchanged).
func (rr *RuntimeResolver) ResolveJSONValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return rr.ResolveString(t)

	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			rv, err := rr.ResolveJSONValue(vv)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil

	case []any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			rv, err := rr.ResolveJSONValue(it)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil

	default:
		// numbers, bools, nil, etc.
		return v, nil
	}
}

func (r *VarResolver) resolveStringWith(vars Vars, builtins Vars, s string) (string, error) {
	// Fast path: no token start.
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		// Look for "{{"
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			// Find "}}"
			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := builtins[name]
			if !ok {
				val, ok = vars[name]
			}
			if !ok {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("missing variable: %s", name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}

func wrapField(err error, field string) error {
	// Keep Kind information, but add context about which field was being resolved.
	return &OpError{
		Op:   "vars.resolve",
		Kind: kindFrom(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

func kindFrom(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindExecution
}

// uuidV4 generates a RFC4122-ish UUID v4 without external dependencies.
func uuidV4() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}

	// Version 4 (random)
	b[6] = (b[6] & 0x0f) | 0x40
	// Variant 10xxxxxx
	b[8] = (b[8] & 0x3f) | 0x80

	hexed := make([]byte, 36)
	hex.Encode(hexed[0:8], b[0:4])
	hexed[8] = '-'
	hex.Encode(hexed[9:13], b[4:6])
	hexed[13] = '-'
	hex.Encode(hexed[14:18], b[6:8])
	hexed[18] = '-'
	hex.Encode(hexed[19:23], b[8:10])
	hexed[23] = '-'
	hex.Encode(hexed[24:36], b[10:16])

	return string(hexed), nil
}
