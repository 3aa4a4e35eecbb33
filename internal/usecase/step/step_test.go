package step

import (
	"testing"

	"github.com/aalvaropc/kipu/internal/domain"
)

// --- helpers ---

func seq(vs ...any) []any { return vs }

func applyOK(t *testing.T, spec domain.StepSpec, doc any) any {
	t.Helper()
	out, _, err := Apply(spec, doc, domain.EmptyNoop)
	if err != nil {
		t.Fatalf("Apply(%s): %v", spec.Op, err)
	}
	return out
}

func equalSeq(t *testing.T, got any, want []any) {
	t.Helper()
	s, ok := got.([]any)
	if !ok {
		t.Fatalf("expected sequence, got %T", got)
	}
	if len(s) != len(want) {
		t.Fatalf("expected %v, got %v", want, s)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, s)
		}
	}
}

// --- rest / initial ---

func TestApply_Rest(t *testing.T) {
	in := seq(1.0, 2.0, 3.0, 4.0, 5.0)
	got := applyOK(t, domain.StepSpec{Op: domain.OpRest}, in)

	equalSeq(t, got, seq(2.0, 3.0, 4.0, 5.0))
	equalSeq(t, in, seq(1.0, 2.0, 3.0, 4.0, 5.0)) // input untouched
}

func TestApply_RestEmpty_NoopPolicy(t *testing.T) {
	got, _, err := Apply(domain.StepSpec{Op: domain.OpRest}, seq(), domain.EmptyNoop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalSeq(t, got, seq())
}

func TestApply_RestEmpty_ErrorPolicy(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpRest}, seq(), domain.EmptyError)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindOutOfBounds) {
		t.Fatalf("expected KindOutOfBounds, got %v", err)
	}
}

func TestApply_InitialEmpty_ErrorPolicy(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpInitial}, seq(), domain.EmptyError)
	if err == nil {
		t.Fatalf("expected error")
	}
}

// --- prepend / append / reverse ---

func TestApply_PrependAppend(t *testing.T) {
	in := seq(2.0, 3.0)

	got := applyOK(t, domain.StepSpec{Op: domain.OpPrepend, Values: seq(1.0)}, in)
	equalSeq(t, got, seq(1.0, 2.0, 3.0))

	got = applyOK(t, domain.StepSpec{Op: domain.OpAppend, Values: seq(4.0)}, in)
	equalSeq(t, got, seq(2.0, 3.0, 4.0))

	equalSeq(t, in, seq(2.0, 3.0))
}

func TestApply_Reverse(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpReverse}, seq(3.0, 1.0, 2.0))
	equalSeq(t, got, seq(2.0, 1.0, 3.0))
}

func TestApply_TypeMismatchOnRecord(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpReverse}, map[string]any{"a": 1.0}, domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindTypeMismatch) {
		t.Fatalf("expected KindTypeMismatch, got %v", err)
	}
}

// --- sort ---

func TestApply_SortScalarsAscending(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpSort}, seq(5.0, 3.0, 1.0, 4.0, 2.0))
	equalSeq(t, got, seq(1.0, 2.0, 3.0, 4.0, 5.0))
}

func TestApply_SortByKeyDescending(t *testing.T) {
	in := seq(
		map[string]any{"name": "a", "score": 1.0},
		map[string]any{"name": "b", "score": 3.0},
		map[string]any{"name": "c", "score": 2.0},
	)
	got := applyOK(t, domain.StepSpec{Op: domain.OpSort, By: "$.score", Order: domain.OrderDesc}, in)

	s := got.([]any)
	names := []string{
		s[0].(map[string]any)["name"].(string),
		s[1].(map[string]any)["name"].(string),
		s[2].(map[string]any)["name"].(string),
	}
	if names[0] != "b" || names[1] != "c" || names[2] != "a" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestApply_SortStrings(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpSort}, seq("pear", "apple", "fig"))
	equalSeq(t, got, seq("apple", "fig", "pear"))
}

// --- splice ---

func TestApply_SpliceReplacesRun(t *testing.T) {
	at, del := 1, 2
	in := seq(1.0, 2.0, 3.0, 4.0)
	got := applyOK(t, domain.StepSpec{Op: domain.OpSplice, At: &at, Delete: &del, Values: seq(9.0)}, in)

	equalSeq(t, got, seq(1.0, 9.0, 4.0))
	equalSeq(t, in, seq(1.0, 2.0, 3.0, 4.0))
}

func TestApply_SpliceOutOfBounds(t *testing.T) {
	at := 10
	_, _, err := Apply(domain.StepSpec{Op: domain.OpSplice, At: &at}, seq(1.0), domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindOutOfBounds) {
		t.Fatalf("expected KindOutOfBounds, got %v", err)
	}
}

func TestApply_SpliceWithoutAt(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpSplice}, seq(1.0), domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}

// --- map ---

func TestApply_MapAdd(t *testing.T) {
	add := 1.0
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpMap,
		Transform: &domain.TransformSpec{Add: &add},
	}, seq(1.0, 2.0, 3.0))
	equalSeq(t, got, seq(2.0, 3.0, 4.0))
}

func TestApply_MapMulThenAdd(t *testing.T) {
	add, mul := 1.0, 10.0
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpMap,
		Transform: &domain.TransformSpec{Add: &add, Mul: &mul},
	}, seq(1.0, 2.0))
	equalSeq(t, got, seq(11.0, 21.0))
}

func TestApply_MapUpper(t *testing.T) {
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpMap,
		Transform: &domain.TransformSpec{Upper: true},
	}, seq("a", "b"))
	equalSeq(t, got, seq("A", "B"))
}

func TestApply_MapPathProjection(t *testing.T) {
	in := seq(
		map[string]any{"id": 1.0, "name": "a"},
		map[string]any{"id": 2.0, "name": "b"},
	)
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpMap,
		Transform: &domain.TransformSpec{Path: "$.name"},
	}, in)
	equalSeq(t, got, seq("a", "b"))
}

func TestApply_MapTypeErrorNamesElement(t *testing.T) {
	add := 1.0
	_, _, err := Apply(domain.StepSpec{
		Op:        domain.OpMap,
		Transform: &domain.TransformSpec{Add: &add},
	}, seq(1.0, "x"), domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindTypeMismatch) {
		t.Fatalf("expected KindTypeMismatch, got %v", err)
	}
}

// --- filter ---

func TestApply_FilterGt(t *testing.T) {
	gt := 2.0
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpFilter,
		Predicate: &domain.PredicateSpec{Gt: &gt},
	}, seq(1.0, 2.0, 3.0, 4.0))
	equalSeq(t, got, seq(3.0, 4.0))
}

func TestApply_FilterEqOnPath(t *testing.T) {
	in := seq(
		map[string]any{"status": "active"},
		map[string]any{"status": "gone"},
		map[string]any{"status": "active"},
	)
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpFilter,
		Predicate: &domain.PredicateSpec{Path: "$.status", Eq: "active"},
	}, in)
	if len(got.([]any)) != 2 {
		t.Fatalf("expected 2 elements, got %v", got)
	}
}

func TestApply_FilterExistsFalse(t *testing.T) {
	no := false
	in := seq(
		map[string]any{"deleted": true},
		map[string]any{"name": "keep"},
	)
	got := applyOK(t, domain.StepSpec{
		Op:        domain.OpFilter,
		Predicate: &domain.PredicateSpec{Path: "$.deleted", Exists: &no},
	}, in)
	if len(got.([]any)) != 1 {
		t.Fatalf("expected 1 element, got %v", got)
	}
}

// --- reduce ---

func TestApply_ReduceSum(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceSum}, seq(1.0, 2.0, 3.0, 4.0, 5.0))
	if got.(float64) != 15.0 {
		t.Fatalf("expected 15, got %v", got)
	}
}

func TestApply_ReduceSumWithSeed(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceSum, Seed: 10.0}, seq(1.0, 2.0))
	if got.(float64) != 13.0 {
		t.Fatalf("expected 13, got %v", got)
	}
}

func TestApply_ReduceMinMaxCount(t *testing.T) {
	in := seq(5.0, 3.0, 9.0)

	if got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceMin}, in); got.(float64) != 3.0 {
		t.Fatalf("expected min 3, got %v", got)
	}
	if got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceMax}, in); got.(float64) != 9.0 {
		t.Fatalf("expected max 9, got %v", got)
	}
	if got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceCount}, in); got.(float64) != 3.0 {
		t.Fatalf("expected count 3, got %v", got)
	}
}

func TestApply_ReduceConcat(t *testing.T) {
	got := applyOK(t, domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceConcat, Seed: ">"}, seq("a", "b"))
	if got.(string) != ">ab" {
		t.Fatalf("expected >ab, got %v", got)
	}
}

func TestApply_ReduceSumNonNumeric(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpReduce, Reduce: domain.ReduceSum}, seq("a"), domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindTypeMismatch) {
		t.Fatalf("expected KindTypeMismatch, got %v", err)
	}
}

// --- merge / without ---

func TestApply_MergeShallowUpdate(t *testing.T) {
	in := map[string]any{"count": 0.0, "name": "x"}
	got := applyOK(t, domain.StepSpec{Op: domain.OpMerge, With: map[string]any{"count": 1.0}}, in)

	m := got.(map[string]any)
	if m["count"].(float64) != 1.0 || m["name"] != "x" {
		t.Fatalf("unexpected result: %v", m)
	}
	if in["count"].(float64) != 0.0 {
		t.Fatalf("original mutated: %v", in)
	}
}

func TestApply_Without(t *testing.T) {
	in := map[string]any{"a": 1.0, "b": 2.0}
	got := applyOK(t, domain.StepSpec{Op: domain.OpWithout, Keys: []string{"a"}}, in)

	m := got.(map[string]any)
	if _, ok := m["a"]; ok {
		t.Fatalf("expected a removed: %v", m)
	}
	if len(in) != 2 {
		t.Fatalf("original mutated: %v", in)
	}
}

// --- pluck ---

func TestApply_PluckStoresVarAndKeepsDoc(t *testing.T) {
	in := map[string]any{"data": map[string]any{"id": 42.0}}
	out, vars, err := Apply(domain.StepSpec{Op: domain.OpPluck, Path: "$.data.id", Var: "id"}, in, domain.EmptyNoop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["id"] != "42" {
		t.Fatalf("expected id=42, got %v", vars)
	}
	if out.(map[string]any)["data"].(map[string]any)["id"].(float64) != 42.0 {
		t.Fatalf("document changed: %v", out)
	}
}

func TestApply_PluckMissingValue(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: domain.OpPluck, Path: "$.nope", Var: "x"}, map[string]any{"a": 1.0}, domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
}

// --- unknown op ---

func TestApply_UnknownOp(t *testing.T) {
	_, _, err := Apply(domain.StepSpec{Op: "teleport"}, seq(), domain.EmptyNoop)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got %v", err)
	}
}
