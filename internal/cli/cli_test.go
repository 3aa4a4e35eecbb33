package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/infra/yamlpipeline"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo", false},
		{"demo.yaml", false},
		{"./demo.yaml", true},
		{"pipelines/demo.yaml", true},
		{"/abs/path/demo.yaml", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasYAMLExt ---

func TestHasYAMLExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"demo.yaml", true},
		{"demo.yml", true},
		{"DEMO.YAML", true},
		{"demo.json", false},
		{"demo", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasYAMLExt(c.input); got != c.want {
			t.Errorf("hasYAMLExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists_True(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
}

func TestFileExists_False(t *testing.T) {
	tmp := t.TempDir()
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- countFailures ---

func TestCountFailures_Empty(t *testing.T) {
	if n := countFailures(domain.ApplyResult{}); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestCountFailures_AllPass(t *testing.T) {
	run := domain.ApplyResult{
		Steps: []domain.StepResult{
			{Op: domain.OpRest},
			{Op: domain.OpReverse},
		},
		Checks: []domain.CheckResult{{Passed: true}},
	}
	if n := countFailures(run); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestCountFailures_StepErrorNotDoubleCounted(t *testing.T) {
	stepErr := &domain.ApplyError{Kind: domain.ApplyErrorBounds, Message: "splice out of bounds"}
	run := domain.ApplyResult{
		Steps: []domain.StepResult{
			{Op: domain.OpRest},
			{Op: domain.OpSplice, Error: stepErr},
		},
		Error: stepErr,
	}
	if n := countFailures(run); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}

func TestCountFailures_CanceledRun(t *testing.T) {
	run := domain.ApplyResult{
		Error: &domain.ApplyError{Kind: domain.ApplyErrorCanceled, Message: "context canceled"},
	}
	if n := countFailures(run); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}

func TestCountFailures_FailedChecks(t *testing.T) {
	run := domain.ApplyResult{
		Checks: []domain.CheckResult{
			{Passed: true},
			{Passed: false},
			{Passed: false},
		},
	}
	if n := countFailures(run); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

// --- countCheckPassFail ---

func TestCountCheckPassFail_Mixed(t *testing.T) {
	in := []domain.CheckResult{
		{Passed: true},
		{Passed: false},
		{Passed: true},
	}
	pass, fail := countCheckPassFail(in)
	if pass != 2 || fail != 1 {
		t.Errorf("expected pass=2 fail=1, got pass=%d fail=%d", pass, fail)
	}
}

func TestCountCheckPassFail_Empty(t *testing.T) {
	pass, fail := countCheckPassFail(nil)
	if pass != 0 || fail != 0 {
		t.Errorf("expected 0/0, got %d/%d", pass, fail)
	}
}

// --- printApply ---

func TestPrintApply_JSON_ValidOutput(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	run := domain.ApplyResult{
		PipelineName: "leaderboard",
		VarSetName:   "dev",
		StartedAt:    now,
		EndedAt:      now.Add(100 * time.Millisecond),
	}
	var buf bytes.Buffer
	if err := printApply(&buf, run, "abc123", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload["run_id"] != "abc123" {
		t.Errorf("expected run_id=abc123, got %v", payload["run_id"])
	}
	if payload["apply"] == nil {
		t.Error("expected 'apply' key in JSON output")
	}
}

func TestPrintApply_Pretty_ContainsPipelineName(t *testing.T) {
	run := domain.ApplyResult{
		PipelineName: "leaderboard",
		VarSetName:   "dev",
		StartedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndedAt:      time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := printApply(&buf, run, "run-42", "pretty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "leaderboard") {
		t.Errorf("expected pipeline name in pretty output, got:\n%s", out)
	}
	if !strings.Contains(out, "run-42") {
		t.Errorf("expected run ID in pretty output, got:\n%s", out)
	}
}

func TestPrintApply_EmptyFormat_IsPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printApply(&buf, domain.ApplyResult{}, "", ""); err != nil {
		t.Fatalf("empty format should behave like pretty, got error: %v", err)
	}
}

func TestPrintApply_UnknownFormat_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := printApply(&buf, domain.ApplyResult{}, "", "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error to mention format, got: %v", err)
	}
}

// --- printPrettyApply with steps, checks, and plucked vars ---

func TestPrintPrettyApply_WithSteps(t *testing.T) {
	run := domain.ApplyResult{
		PipelineName: "leaderboard",
		DocumentPath: "documents/scores.json",
		Steps: []domain.StepResult{
			{
				Name:       "sort by field",
				Op:         domain.OpSort,
				Before:     domain.ValueSummary{Kind: "sequence", Length: 5},
				After:      domain.ValueSummary{Kind: "sequence", Length: 5},
				DurationUS: 12,
			},
			{
				Name:    "pluck winner",
				Op:      domain.OpPluck,
				Before:  domain.ValueSummary{Kind: "sequence", Length: 5},
				After:   domain.ValueSummary{Kind: "sequence", Length: 5},
				Plucked: domain.Vars{"winner": "grace"},
			},
		},
		Checks: []domain.CheckResult{
			{Name: "length", Passed: true, Message: "length is 5"},
			{Name: "jsonpath $[0]", Passed: false, Message: "not found"},
		},
	}
	var buf bytes.Buffer
	printPrettyApply(&buf, run, "")
	out := buf.String()

	if !strings.Contains(out, "sort by field") {
		t.Errorf("expected step name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "sequence(5) -> sequence(5)") {
		t.Errorf("expected value summaries, got:\n%s", out)
	}
	if !strings.Contains(out, "1 pass / 1 fail") {
		t.Errorf("expected check pass/fail count, got:\n%s", out)
	}
	if !strings.Contains(out, "winner = grace") {
		t.Errorf("expected plucked var in output, got:\n%s", out)
	}
}

func TestPrintPrettyApply_StepWithError(t *testing.T) {
	run := domain.ApplyResult{
		Steps: []domain.StepResult{
			{
				Name:  "bad splice",
				Op:    domain.OpSplice,
				Error: &domain.ApplyError{Kind: domain.ApplyErrorBounds, Message: "start 9 out of bounds"},
			},
		},
	}
	var buf bytes.Buffer
	printPrettyApply(&buf, run, "")
	out := buf.String()

	if !strings.Contains(out, "start 9 out of bounds") {
		t.Errorf("expected error message in output, got:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL status for errored step, got:\n%s", out)
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}
	for _, expected := range []string{"apply", "validate", "pipelines", "vars", "ops", "init"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
}

func TestApplyCmd_Flags(t *testing.T) {
	cmd := applyCmd()
	if cmd.Use != "apply" {
		t.Errorf("expected Use=apply, got %q", cmd.Use)
	}
	for _, flag := range []string{"pipeline", "document", "vars", "workspace", "out", "no-save", "format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on apply command", flag)
		}
	}
}

func TestValidateCmd_Flags(t *testing.T) {
	cmd := validateCmd()
	if cmd.Use != "validate" {
		t.Errorf("expected Use=validate, got %q", cmd.Use)
	}
	for _, flag := range []string{"pipeline", "vars", "workspace"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on validate command", flag)
		}
	}
}

func TestPipelinesCmd_HasListSubcommand(t *testing.T) {
	cmd := pipelinesCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under pipelines")
	}
}

func TestVarsCmd_HasListSubcommand(t *testing.T) {
	cmd := varsCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under vars")
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
}

// --- resolveWorkspaceRoot ---

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tmp {
		t.Errorf("expected %q, got %q", tmp, got)
	}
}

func TestResolveWorkspaceRoot_RelativePath(t *testing.T) {
	got, err := resolveWorkspaceRoot(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}

// --- resolvePipelinePath / resolveDocumentRef / resolveVarSetArg ---

func newTestWorkspace(t *testing.T) *workspaceCtx {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"pipelines", "documents", "vars"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "pipelines", "demo.yaml"), []byte("name: demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "documents", "scores.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := domain.DefaultConfig()
	return &workspaceCtx{
		root: root,
		cfg:  cfg,
		pipelines: yamlpipeline.NewLoader(
			yamlpipeline.WithPipelinesDir(cfg.Paths.PipelinesDir),
		),
	}
}

func TestResolvePipelinePath_ByName(t *testing.T) {
	ws := newTestWorkspace(t)
	got, err := resolvePipelinePath(ws, "demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, "pipelines", "demo.yaml")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolvePipelinePath_Missing(t *testing.T) {
	ws := newTestWorkspace(t)
	if _, err := resolvePipelinePath(ws, "nope"); err == nil {
		t.Error("expected error for unknown pipeline")
	}
}

func TestResolveDocumentRef_StdinAndURL(t *testing.T) {
	ws := newTestWorkspace(t)

	got, err := resolveDocumentRef(ws, "-")
	if err != nil || got != "-" {
		t.Errorf("expected stdin ref passthrough, got %q err=%v", got, err)
	}

	url := "https://example.com/data.json"
	got, err = resolveDocumentRef(ws, url)
	if err != nil || got != url {
		t.Errorf("expected URL passthrough, got %q err=%v", got, err)
	}
}

func TestResolveDocumentRef_ByName(t *testing.T) {
	ws := newTestWorkspace(t)
	got, err := resolveDocumentRef(ws, "scores")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(ws.root, "documents", "scores.json")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveVarSetArg_DefaultsToConfig(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.cfg.Defaults.VarSet = "dev"
	got, err := resolveVarSetArg(ws, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "dev" {
		t.Errorf("expected default var set dev, got %q", got)
	}
}

func TestResolveVarSetArg_NamePassthrough(t *testing.T) {
	ws := newTestWorkspace(t)
	got, err := resolveVarSetArg(ws, "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
