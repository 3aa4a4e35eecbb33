package ports

import "context"

// DocumentSource loads a JSON-like document value from a reference:
// a file path, "-" for stdin, or an http(s) URL.
type DocumentSource interface {
	LoadDocument(ctx context.Context, ref string) (any, error)
}

// DocumentSink writes a document value somewhere (file, stdout).
type DocumentSink interface {
	SaveDocument(ref string, doc any) error
}
