package cli

import (
	"fmt"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/spf13/cobra"
)

var opSummaries = map[domain.StepOp]string{
	domain.OpRest:    "drop the first element of a sequence",
	domain.OpInitial: "drop the last element of a sequence",
	domain.OpPrepend: "add values at the front of a sequence",
	domain.OpAppend:  "add values at the end of a sequence",
	domain.OpReverse: "reverse a sequence",
	domain.OpSort:    "sort a sequence by value or jsonpath key",
	domain.OpSplice:  "remove and/or insert elements at a position",
	domain.OpMap:     "transform every element of a sequence",
	domain.OpFilter:  "keep elements matching a predicate",
	domain.OpReduce:  "fold a sequence into a single value",
	domain.OpMerge:   "merge keys into a record",
	domain.OpWithout: "drop keys from a record",
	domain.OpPluck:   "capture a jsonpath value as a runtime var",
}

func opsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the step operations pipelines can use",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, op := range domain.StepOps() {
				fmt.Printf("%-8s %s\n", op, opSummaries[op])
			}
			return nil
		},
	}
}
