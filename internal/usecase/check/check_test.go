package check

import (
	"testing"

	"github.com/aalvaropc/kipu/internal/domain"
)

func TestLength_Pass(t *testing.T) {
	r := Length(3, []any{1.0, 2.0, 3.0})
	if !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Message)
	}
}

func TestLength_Fail(t *testing.T) {
	r := Length(2, []any{1.0})
	if r.Passed {
		t.Fatalf("expected fail")
	}
}

func TestLength_NotASequence(t *testing.T) {
	r := Length(1, map[string]any{"a": 1.0})
	if r.Passed {
		t.Fatalf("expected fail for non-sequence")
	}
}

func TestEvaluate_ExistsAndEquals(t *testing.T) {
	doc := []any{
		map[string]any{"id": 1.0, "name": "ada"},
		map[string]any{"id": 2.0, "name": "lin"},
	}

	length := 2
	spec := domain.ChecksSpec{
		Length: &length,
		JSONPath: map[string]domain.JSONPathCheck{
			"$[0].name": {Exists: true, Equals: "ada"},
			"$[1].id":   {Equals: 2.0},
		},
	}

	results := Evaluate(spec, doc)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("expected pass, got: %s — %s", r.Name, r.Message)
		}
	}
}

func TestEvaluate_StableOrder(t *testing.T) {
	doc := map[string]any{"a": 1.0, "b": 2.0}
	spec := domain.ChecksSpec{
		JSONPath: map[string]domain.JSONPathCheck{
			"$.b": {Exists: true},
			"$.a": {Exists: true},
		},
	}

	first := Evaluate(spec, doc)
	second := Evaluate(spec, doc)
	for i := range first {
		if first[i].Message != second[i].Message {
			t.Fatalf("expected stable ordering")
		}
	}
}

func TestEvaluate_EqualsNumericTolerance(t *testing.T) {
	doc := map[string]any{"count": 3.0}
	spec := domain.ChecksSpec{
		JSONPath: map[string]domain.JSONPathCheck{
			// equals from YAML often arrives as int
			"$.count": {Equals: 3},
		},
	}

	results := Evaluate(spec, doc)
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("expected numeric equality across int/float64, got %+v", results)
	}
}

func TestEvaluate_MissingPathFailsExists(t *testing.T) {
	doc := map[string]any{"a": 1.0}
	spec := domain.ChecksSpec{
		JSONPath: map[string]domain.JSONPathCheck{
			"$.missing": {Exists: true},
		},
	}

	results := Evaluate(spec, doc)
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected exists check to fail, got %+v", results)
	}
}
