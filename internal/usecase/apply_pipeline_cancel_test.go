package usecase

import (
	"context"
	"testing"

	"github.com/aalvaropc/kipu/internal/domain"
)

func TestApplyPipeline_Execute_CanceledBeforeSteps(t *testing.T) {
	p := domain.Pipeline{
		Name:  "cancel-me",
		Steps: []domain.StepSpec{{Op: domain.OpReverse}, {Op: domain.OpRest}},
	}

	uc := NewApplyPipeline(fakePipelineLoader{p: p}, fakeVarSetLoader{}, fakeDocumentSource{doc: []any{1.0, 2.0}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, _, err := uc.Execute(ctx, "p.yaml", "d.json", "")
	if err != nil {
		t.Fatalf("expected embedded cancellation, got load error: %v", err)
	}
	if run.Error == nil || run.Error.Kind != domain.ApplyErrorCanceled {
		t.Fatalf("expected canceled apply error, got %+v", run.Error)
	}
	if len(run.Steps) != 0 {
		t.Fatalf("expected no steps executed, got %d", len(run.Steps))
	}
}

// cancelingDocumentSource cancels the context as soon as the document loads,
// so the first step already sees a canceled context.
type cancelingDocumentSource struct {
	cancel context.CancelFunc
	doc    any
}

func (s cancelingDocumentSource) LoadDocument(_ context.Context, _ string) (any, error) {
	s.cancel()
	return s.doc, nil
}

func TestApplyPipeline_Execute_CanceledMidway(t *testing.T) {
	p := domain.Pipeline{
		Name:  "cancel-mid",
		Steps: []domain.StepSpec{{Op: domain.OpReverse}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	uc := NewApplyPipeline(fakePipelineLoader{p: p}, fakeVarSetLoader{}, cancelingDocumentSource{cancel: cancel, doc: []any{1.0}}, nil)

	run, _, err := uc.Execute(ctx, "p.yaml", "d.json", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Error == nil || run.Error.Kind != domain.ApplyErrorCanceled {
		t.Fatalf("expected canceled apply error, got %+v", run.Error)
	}
}
