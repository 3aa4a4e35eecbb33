package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aalvaropc/kipu/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func prettyValue(v any) string {
	if v == nil {
		return "(null)"
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func renderApplyReport(run domain.ApplyResult, id string) string {
	var b strings.Builder

	b.WriteString("Pipeline: ")
	b.WriteString(run.PipelineName)
	b.WriteString("\nDocument: ")
	b.WriteString(run.DocumentPath)
	if id != "" {
		b.WriteString("\nRun ID:   ")
		b.WriteString(id)
	}
	b.WriteString("\n\nSteps:\n")

	for _, s := range run.Steps {
		status := "OK"
		if s.Error != nil {
			status = "FAIL"
		}
		name := s.Name
		if name == "" {
			name = string(s.Op)
		}
		b.WriteString(fmt.Sprintf("  - [%s] %s (%s)\n", status, name, s.Op))
		if s.Error != nil {
			b.WriteString("      ")
			b.WriteString(string(s.Error.Kind))
			b.WriteString(": ")
			b.WriteString(s.Error.Message)
			b.WriteString("\n")
			continue
		}
		b.WriteString("      ")
		b.WriteString(clampString(s.After.Preview, 72))
		b.WriteString("\n")
	}

	if len(run.Checks) > 0 {
		b.WriteString("\nChecks:\n")
		for _, c := range run.Checks {
			status := "FAIL"
			if c.Passed {
				status = "PASS"
			}
			b.WriteString("  - ")
			b.WriteString(c.Name)
			b.WriteString(" [")
			b.WriteString(status)
			b.WriteString("] ")
			b.WriteString(c.Message)
			b.WriteString("\n")
		}
	}

	if run.Error != nil {
		b.WriteString("\nError: ")
		b.WriteString(run.Error.Message)
		b.WriteString("\n")
	}

	b.WriteString("\nOutput:\n")
	b.WriteString(clampString(prettyValue(run.Output), 1200))
	b.WriteString("\n")

	return b.String()
}
