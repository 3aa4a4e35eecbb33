package document

import (
	"encoding/json"
	"io"
	"os"

	"github.com/aalvaropc/kipu/internal/domain"
	"github.com/aalvaropc/kipu/internal/ports"
	"gopkg.in/yaml.v3"
)

// Sink writes transformed documents to a file or stdout.
type Sink struct {
	stdout io.Writer
}

type SinkOption func(*Sink)

func WithStdout(w io.Writer) SinkOption {
	return func(s *Sink) { s.stdout = w }
}

func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{stdout: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.DocumentSink = (*Sink)(nil)

// SaveDocument writes doc to ref. An empty ref or "-" writes
// pretty JSON to stdout; a .yaml/.yml path writes YAML.
func (s *Sink) SaveDocument(ref string, doc any) error {
	if ref == "" || ref == "-" {
		b, err := encodeJSON(doc)
		if err != nil {
			return err
		}
		_, err = s.stdout.Write(append(b, '\n'))
		return err
	}

	var b []byte
	var err error
	if hasYAMLExt(ref) {
		b, err = yaml.Marshal(doc)
	} else {
		b, err = encodeJSON(doc)
		b = append(b, '\n')
	}
	if err != nil {
		return &domain.OpError{
			Op:   "document.save",
			Kind: domain.KindExecution,
			Path: ref,
			Err:  err,
		}
	}

	if err := os.WriteFile(ref, b, 0o644); err != nil {
		return &domain.OpError{
			Op:   "document.save",
			Kind: domain.KindExecution,
			Path: ref,
			Err:  err,
		}
	}
	return nil
}

func encodeJSON(doc any) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &domain.OpError{
			Op:   "document.save",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}
	return b, nil
}
