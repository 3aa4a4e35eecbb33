package usecase

import (
	"context"
	"time"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/ports"
	uccheck "github.com/aalvaropc/kipu/internal/usecase/check"
	ucstep "github.com/aalvaropc/kipu/internal/usecase/step"
)

type ApplyPipeline struct {
	pipelines ports.PipelineLoader
	varsets   ports.VarSetLoader
	documents ports.DocumentSource
	store     ports.ArtifactStore // nil disables artifact saving
	resolver  *domain.VarResolver
}

type ApplyOption func(*ApplyPipeline)

func WithVarResolver(vr *domain.VarResolver) ApplyOption {
	return func(uc *ApplyPipeline) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewApplyPipeline(pl ports.PipelineLoader, vl ports.VarSetLoader, ds ports.DocumentSource, store ports.ArtifactStore, opts ...ApplyOption) *ApplyPipeline {
	uc := &ApplyPipeline{
		pipelines: pl,
		varsets:   vl,
		documents: ds,
		store:     store,
		resolver:  domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute loads a pipeline and a document, applies the steps in order, and
// evaluates checks against the output.
//
// The returned error covers load/setup failures only. Step and check failures
// are embedded in the ApplyResult; callers decide the exit policy.
// The loaded document value is cloned before the first step, so the caller's
// document is never touched.
func (uc *ApplyPipeline) Execute(ctx context.Context, pipelinePath, documentRef, varSetArg string) (domain.ApplyResult, string, error) {
	p, err := uc.pipelines.LoadPipeline(pipelinePath)
	if err != nil {
		return domain.ApplyResult{}, "", err
	}

	// pipeline vars < vars file < plucked runtime vars (updated per step)
	vars := p.Vars
	varSetName := ""
	if varSetArg != "" && uc.varsets != nil {
		vs, verr := uc.varsets.LoadVarSet(varSetArg)
		if verr != nil {
			return domain.ApplyResult{}, "", verr
		}
		vars = domain.MergeVars(p.Vars, vs.Vars)
		varSetName = vs.Name
	}

	rt, err := uc.resolver.NewRuntime(vars)
	if err != nil {
		return domain.ApplyResult{}, "", err
	}

	doc, err := uc.documents.LoadDocument(ctx, documentRef)
	if err != nil {
		return domain.ApplyResult{}, "", err
	}

	run := domain.ApplyResult{
		PipelineName: p.Name,
		PipelinePath: pipelinePath,
		DocumentPath: documentRef,
		VarSetName:   varSetName,
		StartedAt:    time.Now(),
		Steps:        make([]domain.StepResult, 0, len(p.Steps)),
	}

	policy := p.OnEmpty
	if policy == "" {
		policy = domain.EmptyNoop
	}

	work := domain.CloneValue(doc)

	for _, spec := range p.Steps {
		if cerr := ctx.Err(); cerr != nil {
			run.Error = &domain.ApplyError{Kind: domain.ApplyErrorCanceled, Message: cerr.Error()}
			break
		}

		sr := domain.StepResult{
			Name:   spec.Name,
			Op:     spec.Op,
			Before: domain.Summarize(work),
		}

		started := time.Now()
		resolved, rerr := rt.ResolveStep(spec)
		if rerr != nil {
			sr.After = sr.Before
			sr.DurationUS = time.Since(started).Microseconds()
			sr.Error = domain.NewApplyError(rerr)
			run.Steps = append(run.Steps, sr)
			run.Error = sr.Error
			break
		}

		next, plucked, aerr := ucstep.Apply(resolved, work, policy)
		sr.DurationUS = time.Since(started).Microseconds()

		if aerr != nil {
			// A failed step invalidates everything downstream: stop here.
			sr.After = sr.Before
			sr.Error = domain.NewApplyError(aerr)
			run.Steps = append(run.Steps, sr)
			run.Error = sr.Error
			break
		}

		if len(plucked) > 0 {
			sr.Plucked = plucked
			rt.AddVars(plucked)
		}

		work = next
		sr.After = domain.Summarize(work)
		run.Steps = append(run.Steps, sr)
	}

	if run.Error == nil {
		run.Checks = uccheck.Evaluate(p.Checks, work)
	}

	run.Output = work
	run.EndedAt = time.Now()

	id := ""
	if uc.store != nil {
		artifact := domain.ApplyArtifact{
			PipelineName: run.PipelineName,
			PipelinePath: run.PipelinePath,
			DocumentPath: run.DocumentPath,
			VarSetName:   run.VarSetName,
			StartedAt:    run.StartedAt,
			EndedAt:      run.EndedAt,
			Steps:        run.Steps,
			Checks:       run.Checks,
			Output:       run.Output,
		}
		savedID, serr := uc.store.SaveApply(artifact)
		if serr != nil {
			return run, "", serr
		}
		id = savedID
	}

	return run, id, nil
}
