package usecase

import (
	"context"
	"fmt"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/ports"
	ucstep "github.com/aalvaropc/kipu/internal/usecase/step"
)

type ValidatePipeline struct {
	pipelines ports.PipelineLoader
	varsets   ports.VarSetLoader
	resolver  *domain.VarResolver
}

type ValidateOption func(*ValidatePipeline)

func WithValidateResolver(vr *domain.VarResolver) ValidateOption {
	return func(uc *ValidatePipeline) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewValidatePipeline(pl ports.PipelineLoader, vl ports.VarSetLoader, opts ...ValidateOption) *ValidatePipeline {
	uc := &ValidatePipeline{
		pipelines: pl,
		varsets:   vl,
		resolver:  domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute validates a pipeline (optionally against a vars file) without
// touching any document. It checks that every step is well-formed and that
// templated arguments can be resolved, treating pluck vars as available for
// later steps.
func (uc *ValidatePipeline) Execute(ctx context.Context, pipelinePath string, varSetArg string) error {
	p, err := uc.pipelines.LoadPipeline(pipelinePath)
	if err != nil {
		return err
	}

	vars := p.Vars
	if varSetArg != "" && uc.varsets != nil {
		vs, verr := uc.varsets.LoadVarSet(varSetArg)
		if verr != nil {
			return verr
		}
		vars = domain.MergeVars(p.Vars, vs.Vars)
	}

	if p.OnEmpty != "" && p.OnEmpty != domain.EmptyNoop && p.OnEmpty != domain.EmptyError {
		return &domain.OpError{
			Op:   "validate.pipeline",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown on_empty policy %q", p.OnEmpty),
		}
	}

	for _, spec := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := ucstep.Validate(spec); err != nil {
			return fmt.Errorf("step %q: %w", stepLabel(spec), err)
		}

		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return err
		}
		if _, err := rt.ResolveStep(spec); err != nil {
			return fmt.Errorf("step %q: %w", stepLabel(spec), err)
		}

		// Assume the pluck var becomes available for subsequent steps.
		if spec.Op == domain.OpPluck && spec.Var != "" {
			if _, ok := vars[spec.Var]; !ok {
				vars = domain.MergeVars(vars, domain.Vars{spec.Var: "x"})
			}
		}
	}

	return nil
}

func stepLabel(spec domain.StepSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return string(spec.Op)
}
