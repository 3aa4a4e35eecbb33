package domain

// StepOp identifies a pipeline step operation.
type StepOp string

const (
	OpRest    StepOp = "rest"
	OpInitial StepOp = "initial"
	OpPrepend StepOp = "prepend"
	OpAppend  StepOp = "append"
	OpReverse StepOp = "reverse"
	OpSort    StepOp = "sort"
	OpSplice  StepOp = "splice"
	OpMap     StepOp = "map"
	OpFilter  StepOp = "filter"
	OpReduce  StepOp = "reduce"
	OpMerge   StepOp = "merge"
	OpWithout StepOp = "without"
	OpPluck   StepOp = "pluck"
)

// StepOps lists every supported operation in catalog order.
func StepOps() []StepOp {
	return []StepOp{
		OpRest, OpInitial, OpPrepend, OpAppend, OpReverse, OpSort,
		OpSplice, OpMap, OpFilter, OpReduce, OpMerge, OpWithout, OpPluck,
	}
}

// SortOrder controls sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// EmptyPolicy is the caller-defined boundary policy for rest/initial on an
// empty sequence.
type EmptyPolicy string

const (
	EmptyNoop  EmptyPolicy = "noop"
	EmptyError EmptyPolicy = "error"
)

// TransformSpec describes the per-element transformation of a map step.
// Exactly one family should be set: Path (pluck a value out of each element),
// Add/Mul (numeric), or Upper/Lower/Trim (string).
type TransformSpec struct {
	Path string

	Add *float64
	Mul *float64

	Upper bool
	Lower bool
	Trim  bool
}

// PredicateSpec describes the per-element predicate of a filter step.
// Path optionally addresses a value inside each element; exactly one of the
// comparison fields should be set.
type PredicateSpec struct {
	Path string

	Exists *bool
	Eq     any
	Ne     any
	Gt     *float64
	Lt     *float64
}

// ReduceOp identifies the combining function of a reduce step.
type ReduceOp string

const (
	ReduceSum    ReduceOp = "sum"
	ReduceMin    ReduceOp = "min"
	ReduceMax    ReduceOp = "max"
	ReduceCount  ReduceOp = "count"
	ReduceConcat ReduceOp = "concat"
	ReduceFirst  ReduceOp = "first"
	ReduceLast   ReduceOp = "last"
)

// StepSpec describes a single pipeline step. Which argument fields matter
// depends on Op; loaders validate the pairing.
type StepSpec struct {
	Name string
	Op   StepOp

	// prepend/append/splice
	Values []any

	// splice
	At     *int
	Delete *int

	// sort: optional JSONPath addressing the sort key inside each element.
	By    string
	Order SortOrder

	// map
	Transform *TransformSpec

	// filter
	Predicate *PredicateSpec

	// reduce
	Reduce ReduceOp
	Seed   any

	// merge: shallow record update applied on top of the document.
	With map[string]any

	// without
	Keys []string

	// pluck: JSONPath evaluated against the document; the result is stored
	// under Var for later steps, the document itself is left as-is.
	Path string
	Var  string
}

// JSONPathCheck defines a JSONPath-based post-condition on the output document.
type JSONPathCheck struct {
	Exists bool
	Equals any
}

// ChecksSpec defines post-conditions evaluated against the output document.
type ChecksSpec struct {
	// Length is an expected sequence length (optional).
	Length *int

	// JSONPath contains checks keyed by expression (optional).
	JSONPath map[string]JSONPathCheck
}

// Pipeline is an ordered list of non-mutating transformations applied to a
// single document value (Git-friendly, declarative).
type Pipeline struct {
	Name string

	// Vars are default variables available to all steps in the pipeline.
	// They can be overridden by a vars file and extended by pluck steps.
	Vars Vars

	// OnEmpty is the boundary policy for rest/initial on empty sequences.
	OnEmpty EmptyPolicy

	Steps  []StepSpec
	Checks ChecksSpec
}

// PipelineRef is a lightweight reference to a pipeline file on disk.
type PipelineRef struct {
	Name string
	Path string
}
