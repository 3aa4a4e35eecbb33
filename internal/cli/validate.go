package cli

import (
	"fmt"

	"github.com/aalvaropc/kipu/internal/usecase"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var varSet string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline and var set (no document needed)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			pipelinePath, err := resolvePipelinePath(ws, pipeline)
			if err != nil {
				return err
			}

			varSetArg, err := resolveVarSetArg(ws, varSet)
			if err != nil {
				return err
			}

			uc := usecase.NewValidatePipeline(ws.pipelines, ws.varsets)
			if err := uc.Execute(cmd.Context(), pipelinePath, varSetArg); err != nil {
				return err
			}

			fmt.Println("OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVar(&varSet, "vars", "", "Var set name or path (optional; defaults to workspace default)")

	_ = c.MarkFlagRequired("pipeline")
	return c
}
