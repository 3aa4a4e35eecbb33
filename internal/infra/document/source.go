// Package document loads and saves JSON-like document values from files,
// stdin, or remote URLs, decoding JSON or YAML by extension.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/infra/fetch"
	"github.com/aalvaropc/kipu/internal/ports"
	"gopkg.in/yaml.v3"
)

type remoteFetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
}

// Source loads documents from file paths, "-" (stdin) or http(s) URLs.
type Source struct {
	fetcher remoteFetcher
	stdin   io.Reader
}

type SourceOption func(*Source)

func WithFetcher(f remoteFetcher) SourceOption {
	return func(s *Source) { s.fetcher = f }
}

func WithStdin(r io.Reader) SourceOption {
	return func(s *Source) { s.stdin = r }
}

func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		fetcher: fetch.NewFetcher(),
		stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.DocumentSource = (*Source)(nil)

func (s *Source) LoadDocument(ctx context.Context, ref string) (any, error) {
	switch {
	case ref == "-":
		b, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "document.load",
				Kind: domain.KindExecution,
				Path: ref,
				Err:  err,
			}
		}
		return decodeSniff(ref, b)

	case isURL(ref):
		res, err := s.fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		if isYAMLContentType(res.ContentType) || hasYAMLExt(ref) {
			return decodeYAML(ref, res.Body)
		}
		return decodeJSON(ref, res.Body)

	default:
		b, err := os.ReadFile(ref)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "document.load",
				Kind: domain.KindNotFound,
				Path: ref,
				Err:  err,
			}
		}
		if hasYAMLExt(ref) {
			return decodeYAML(ref, b)
		}
		return decodeJSON(ref, b)
	}
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func hasYAMLExt(ref string) bool {
	ext := strings.ToLower(filepath.Ext(ref))
	return ext == ".yaml" || ext == ".yml"
}

func isYAMLContentType(ct string) bool {
	return strings.Contains(ct, "yaml")
}

func decodeJSON(ref string, b []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&v); err != nil {
		return nil, &domain.OpError{
			Op:   "document.decode",
			Kind: domain.KindInvalidConfig,
			Path: ref,
			Err:  err,
		}
	}
	return v, nil
}

func decodeYAML(ref string, b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, &domain.OpError{
			Op:   "document.decode",
			Kind: domain.KindInvalidConfig,
			Path: ref,
			Err:  err,
		}
	}
	return normalize(v), nil
}

// decodeSniff tries JSON first and falls back to YAML.
// Stdin carries no extension to dispatch on.
func decodeSniff(ref string, b []byte) (any, error) {
	if v, err := decodeJSON(ref, b); err == nil {
		return v, nil
	}
	return decodeYAML(ref, b)
}

// normalize converts YAML-decoded values to the JSON shape
// the pipeline engine works with: float64 numbers and
// map[string]any records.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
