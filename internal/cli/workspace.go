package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/infra/document"
	"github.com/aalvaropc/kipu/internal/infra/runstore"
	"github.com/aalvaropc/kipu/internal/infra/workspacefinder"
	"github.com/aalvaropc/kipu/internal/infra/yamlpipeline"
	"github.com/aalvaropc/kipu/internal/infra/yamlvars"
	"github.com/aalvaropc/kipu/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	pipelines ports.PipelineLoader

	varsets    ports.VarSetLoader
	varCatalog ports.VarSetCatalog

	documents ports.DocumentSource
	sink      ports.DocumentSink
	store     ports.ArtifactStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	pipelineLoader := yamlpipeline.NewLoader(
		yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
	)

	varLoader := yamlvars.NewLoader(
		root,
		yamlvars.WithVarsDir(cfg.Paths.VarsDir),
	)

	var store ports.ArtifactStore
	if cfg.Artifacts.Save {
		store = runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))
	}

	return &workspaceCtx{
		root:       root,
		cfg:        cfg,
		pipelines:  pipelineLoader,
		varsets:    varLoader,
		varCatalog: varLoader,
		documents:  document.NewSource(),
		sink:       document.NewSink(),
		store:      store,
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `kipu init`): %w", wd, err)
	}
	return root, nil
}

func resolvePipelinePath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("pipeline is required (use --pipeline or -p)")
	}

	// If arg looks like a path (contains separators), resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	pipelinesDir := filepath.Join(ws.root, ws.cfg.Paths.PipelinesDir)

	// If user provided "demo.yaml", treat it as file under pipelines dir.
	if hasYAMLExt(in) {
		p := filepath.Join(pipelinesDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	// If user provided "demo", try demo.yaml / demo.yml in pipelines dir.
	p1 := filepath.Join(pipelinesDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(pipelinesDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	// As a last resort: match by pipeline "name" field.
	refs, err := ws.pipelines.ListPipelines(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("pipeline %q not found in %q", in, pipelinesDir)
}

// resolveDocumentRef passes URLs and stdin through untouched and resolves
// bare names against the documents dir.
func resolveDocumentRef(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("document is required (use --document or -d)")
	}

	if in == "-" || strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return in, nil
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	documentsDir := filepath.Join(ws.root, ws.cfg.Paths.DocumentsDir)

	p := filepath.Join(documentsDir, in)
	if fileExists(p) {
		return p, nil
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := filepath.Join(documentsDir, in+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("document %q not found in %q", in, documentsDir)
}

func resolveVarSetArg(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return ws.cfg.Defaults.VarSet, nil
	}

	// If arg is a path, resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	// If user provided "dev.yaml", treat it as file under vars dir.
	if hasYAMLExt(in) {
		varsDir := filepath.Join(ws.root, ws.cfg.Paths.VarsDir)
		return filepath.Join(varsDir, in), nil
	}

	// Otherwise, treat it as a set name ("dev") and let the loader resolve it.
	return in, nil
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
