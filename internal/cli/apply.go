package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/usecase"
	"github.com/spf13/cobra"
)

func applyCmd() *cobra.Command {
	var workspace string
	var pipeline string
	var docRef string
	var varSet string
	var out string
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "apply",
		Short: "Apply a pipeline to a document without mutating the input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			pipelinePath, err := resolvePipelinePath(ws, pipeline)
			if err != nil {
				return err
			}

			documentRef, err := resolveDocumentRef(ws, docRef)
			if err != nil {
				return err
			}

			varSetArg, err := resolveVarSetArg(ws, varSet)
			if err != nil {
				return err
			}

			var store = ws.store
			if noSave {
				store = nil
			}

			uc := usecase.NewApplyPipeline(ws.pipelines, ws.varsets, ws.documents, store)

			run, runID, err := uc.Execute(cmd.Context(), pipelinePath, documentRef, varSetArg)
			if err != nil {
				// Setup or save failures: print what we can, then surface the error.
				_ = printApply(os.Stdout, run, runID, format)
				return err
			}

			if err := printApply(os.Stdout, run, runID, format); err != nil {
				return err
			}

			if out != "" {
				if err := ws.sink.SaveDocument(out, run.Output); err != nil {
					return err
				}
			}

			if fails := countFailures(run); fails > 0 {
				return fmt.Errorf("apply failed (%d failure(s))", fails)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&pipeline, "pipeline", "p", "", "Pipeline name or path (required)")
	c.Flags().StringVarP(&docRef, "document", "d", "", "Document name, path, URL, or - for stdin (required)")
	c.Flags().StringVar(&varSet, "vars", "", "Var set name or path (optional; defaults to workspace default)")
	c.Flags().StringVarP(&out, "out", "o", "", "Write the transformed document to a file (or - for stdout)")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save apply artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("pipeline")
	_ = c.MarkFlagRequired("document")
	return c
}

func printApply(w io.Writer, run domain.ApplyResult, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// Include runID (optional) as a wrapper to avoid changing domain model.
		payload := map[string]any{
			"run_id": runID,
			"apply":  run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyApply(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyApply(w io.Writer, run domain.ApplyResult, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Pipeline: %s\n", run.PipelineName)
	fmt.Fprintf(w, "Document: %s\n", run.DocumentPath)
	if run.VarSetName != "" {
		fmt.Fprintf(w, "Vars:     %s\n", run.VarSetName)
	}
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Ended:    %s\n", run.EndedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, s := range run.Steps {
		status := "OK"
		if s.Error != nil {
			status = "FAIL"
		}

		name := s.Name
		if name == "" {
			name = string(s.Op)
		}
		fmt.Fprintf(w, "- [%s] %s (%s) %dus\n", status, name, s.Op, s.DurationUS)

		if s.Error != nil {
			fmt.Fprintf(w, "  error: %s (%s)\n", s.Error.Message, s.Error.Kind)
			continue
		}

		fmt.Fprintf(w, "  %s -> %s\n", summarizeLine(s.Before), summarizeLine(s.After))

		if len(s.Plucked) > 0 {
			fmt.Fprintf(w, "  plucked vars:\n")
			for k, v := range s.Plucked {
				fmt.Fprintf(w, "    - %s = %s\n", k, v)
			}
		}
	}

	if len(run.Checks) > 0 {
		pass, fail := countCheckPassFail(run.Checks)
		fmt.Fprintf(w, "\nchecks: %d pass / %d fail\n", pass, fail)
		for _, c := range run.Checks {
			mark := "✓"
			if !c.Passed {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s: %s\n", mark, c.Name, c.Message)
		}
	}

	if run.Error != nil {
		fmt.Fprintf(w, "\nerror: %s (%s)\n", run.Error.Message, run.Error.Kind)
	}

	fmt.Fprintln(w)
}

func summarizeLine(v domain.ValueSummary) string {
	switch v.Kind {
	case "sequence", "record":
		return fmt.Sprintf("%s(%d)", v.Kind, v.Length)
	case "":
		return "?"
	default:
		return v.Kind
	}
}

func countFailures(run domain.ApplyResult) int {
	n := 0
	for _, s := range run.Steps {
		if s.Error != nil {
			n++
		}
	}
	// run.Error mirrors the failed step when one exists; only count it
	// separately for run-level failures like cancellation.
	if run.Error != nil && n == 0 {
		n++
	}
	for _, c := range run.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

func countCheckPassFail(in []domain.CheckResult) (pass int, fail int) {
	for _, c := range in {
		if c.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}
