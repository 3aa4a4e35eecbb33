package step

import (
	"testing"

	"github.com/aalvaropc/kipu/internal/domain"
)

func TestValidate_AcceptsWellFormedSteps(t *testing.T) {
	at := 0
	yes := true
	add := 1.0

	cases := []domain.StepSpec{
		{Op: domain.OpRest},
		{Op: domain.OpInitial},
		{Op: domain.OpReverse},
		{Op: domain.OpPrepend, Values: []any{1.0}},
		{Op: domain.OpAppend, Values: []any{"x"}},
		{Op: domain.OpSort},
		{Op: domain.OpSort, By: "$.score", Order: domain.OrderDesc},
		{Op: domain.OpSplice, At: &at},
		{Op: domain.OpMap, Transform: &domain.TransformSpec{Add: &add}},
		{Op: domain.OpMap, Transform: &domain.TransformSpec{Path: "$.name"}},
		{Op: domain.OpFilter, Predicate: &domain.PredicateSpec{Exists: &yes, Path: "$.id"}},
		{Op: domain.OpReduce, Reduce: domain.ReduceSum},
		{Op: domain.OpMerge, With: map[string]any{"k": "v"}},
		{Op: domain.OpWithout, Keys: []string{"k"}},
		{Op: domain.OpPluck, Path: "$.id", Var: "id"},
	}

	for _, c := range cases {
		if err := Validate(c); err != nil {
			t.Errorf("Validate(%s): unexpected error: %v", c.Op, err)
		}
	}
}

func TestValidate_RejectsMalformedSteps(t *testing.T) {
	del := -1
	at := 0
	add := 1.0

	cases := []struct {
		name string
		spec domain.StepSpec
	}{
		{"unknown op", domain.StepSpec{Op: "teleport"}},
		{"prepend without values", domain.StepSpec{Op: domain.OpPrepend}},
		{"append without values", domain.StepSpec{Op: domain.OpAppend}},
		{"sort with bad order", domain.StepSpec{Op: domain.OpSort, Order: "sideways"}},
		{"splice without at", domain.StepSpec{Op: domain.OpSplice}},
		{"splice negative delete", domain.StepSpec{Op: domain.OpSplice, At: &at, Delete: &del}},
		{"map without transform", domain.StepSpec{Op: domain.OpMap}},
		{"map empty transform", domain.StepSpec{Op: domain.OpMap, Transform: &domain.TransformSpec{}}},
		{"map mixed families", domain.StepSpec{Op: domain.OpMap, Transform: &domain.TransformSpec{Add: &add, Upper: true}}},
		{"map upper and lower", domain.StepSpec{Op: domain.OpMap, Transform: &domain.TransformSpec{Upper: true, Lower: true}}},
		{"filter without predicate", domain.StepSpec{Op: domain.OpFilter}},
		{"filter empty predicate", domain.StepSpec{Op: domain.OpFilter, Predicate: &domain.PredicateSpec{}}},
		{"reduce without op", domain.StepSpec{Op: domain.OpReduce}},
		{"reduce unknown op", domain.StepSpec{Op: domain.OpReduce, Reduce: "median"}},
		{"merge without with", domain.StepSpec{Op: domain.OpMerge}},
		{"without empty keys", domain.StepSpec{Op: domain.OpWithout}},
		{"pluck without var", domain.StepSpec{Op: domain.OpPluck, Path: "$.id"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.spec)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected KindInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidate_FilterMultipleComparisons(t *testing.T) {
	gt := 1.0
	lt := 5.0
	err := Validate(domain.StepSpec{
		Op:        domain.OpFilter,
		Predicate: &domain.PredicateSpec{Gt: &gt, Lt: &lt},
	})
	if err == nil {
		t.Fatalf("expected error for multiple comparisons")
	}
}
