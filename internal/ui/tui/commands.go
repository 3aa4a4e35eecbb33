package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/infra/document"
	"github.com/aalvaropc/kipu/internal/infra/runstore"
	"github.com/aalvaropc/kipu/internal/infra/workspacefinder"
	"github.com/aalvaropc/kipu/internal/infra/yamlpipeline"
	"github.com/aalvaropc/kipu/internal/infra/yamlvars"
	"github.com/aalvaropc/kipu/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadPipelines(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return pipelinesLoadedMsg{root: root, err: err}
		}

		loader := yamlpipeline.NewLoader(
			yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
		)

		refs, err := loader.ListPipelines(root)
		return pipelinesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadVarSets(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return varSetsLoadedMsg{root: root, err: err}
		}

		loader := yamlvars.NewLoader(
			root,
			yamlvars.WithVarsDir(cfg.Paths.VarsDir),
		)

		refs, err := loader.ListVarSets(root)
		return varSetsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdPreviewPipeline(path string) tea.Cmd {
	return func() tea.Msg {
		p := filepath.Clean(path)

		loader := yamlpipeline.NewLoader()
		pl, err := loader.LoadPipeline(p)
		if err != nil {
			return pipelinePreviewMsg{path: p, preview: "", err: err}
		}

		var b strings.Builder
		b.WriteString("Pipeline: ")
		b.WriteString(pl.Name)
		b.WriteString("\n\n")

		if len(pl.Vars) > 0 {
			b.WriteString("Vars:\n")
			for k, v := range pl.Vars {
				b.WriteString("  - ")
				b.WriteString(k)
				b.WriteString(" = ")
				b.WriteString(v)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("Steps:\n")
		for _, s := range pl.Steps {
			b.WriteString("  - ")
			b.WriteString(string(s.Op))
			if s.Name != "" {
				b.WriteString("  ")
				b.WriteString(s.Name)
			}
			b.WriteString("\n")
		}

		if pl.Checks.Length != nil || len(pl.Checks.JSONPath) > 0 {
			b.WriteString("\nChecks:\n")
			if pl.Checks.Length != nil {
				b.WriteString(fmt.Sprintf("  - length = %d\n", *pl.Checks.Length))
			}

			exprs := make([]string, 0, len(pl.Checks.JSONPath))
			for expr := range pl.Checks.JSONPath {
				exprs = append(exprs, expr)
			}
			sort.Strings(exprs)
			for _, expr := range exprs {
				b.WriteString("  - jsonpath ")
				b.WriteString(expr)
				b.WriteString("\n")
			}
		}

		return pipelinePreviewMsg{path: p, preview: b.String(), err: nil}
	}
}

func listenApply(ch <-chan applyDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return applyDoneMsg{err: errors.New("apply channel closed")}
		}
		return msg
	}
}

// defaultDocumentRef picks the first document under the documents dir.
func defaultDocumentRef(root string, cfg domain.Config) (string, error) {
	dir := filepath.Join(root, cfg.Paths.DocumentsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no documents found in %q", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

func startApplyAsync(
	workspaceRoot, pipelinePath, documentRef string,
	log *slog.Logger,
	debug bool,
) (chan applyDoneMsg, tea.Cmd) {
	ch := make(chan applyDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("apply.start",
			"workspace", workspaceRoot,
			"pipeline_path", pipelinePath,
			"document", documentRef,
			"debug", debug,
		)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil {
			log.Error("apply.load_config.failed", "err", err)
			ch <- applyDoneMsg{err: err}
			return
		}

		docRef := documentRef
		if docRef == "" {
			docRef, err = defaultDocumentRef(workspaceRoot, cfg)
			if err != nil {
				log.Error("apply.default_document.failed", "err", err)
				ch <- applyDoneMsg{err: err}
				return
			}
		}

		pipelineLoader := yamlpipeline.NewLoader(
			yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
		)
		varLoader := yamlvars.NewLoader(
			workspaceRoot,
			yamlvars.WithVarsDir(cfg.Paths.VarsDir),
		)

		source := document.NewSource()
		store := runstore.NewJSONStore(workspaceRoot, cfg, runstore.WithIndex(true))

		uc := usecase.NewApplyPipeline(pipelineLoader, varLoader, source, store)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, pipelinePath, docRef, cfg.Defaults.VarSet)

		if execErr != nil {
			log.Error("apply.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("apply.ok", "saved_id", id)
		}

		for _, sr := range run.Steps {
			if sr.Error != nil {
				log.Warn("step.error",
					"name", sr.Name,
					"op", string(sr.Op),
					"kind", string(sr.Error.Kind),
					"message", sr.Error.Message,
					"duration_us", sr.DurationUS,
				)
			} else if debug {
				log.Debug("step.ok",
					"name", sr.Name,
					"op", string(sr.Op),
					"before", sr.Before.Kind,
					"after", sr.After.Kind,
					"duration_us", sr.DurationUS,
				)
			}
		}

		ch <- applyDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenApply(ch)
}
