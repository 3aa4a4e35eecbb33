package tui

import "github.com/aalvaropc/kipu/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type pipelinesLoadedMsg struct {
	root string
	refs []domain.PipelineRef
	err  error
}

type varSetsLoadedMsg struct {
	root string
	refs []domain.VarSetRef
	err  error
}

type pipelinePreviewMsg struct {
	path    string
	preview string
	err     error
}

type applyDoneMsg struct {
	run domain.ApplyResult
	id  string
	err error
}
