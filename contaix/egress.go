package contaix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/rs/zerolog/log"
)

// DefaultChunkTemplate names chunk files when no chunk egress is given
const DefaultChunkTemplate = "store_aggregate_%02d.md"

// Egress decides what happens to a finished aggregate
type Egress interface {
	Route(doc string) (string, error)
}

// EgressFunc adapts a function to Egress
type EgressFunc func(doc string) (string, error)

func (f EgressFunc) Route(doc string) (string, error) { return f(doc) }

// EgressTemplate derives the egress of the chunk with the given 1-based index
type EgressTemplate func(index int) Egress

type identityEgress struct{}

func (identityEgress) Route(doc string) (string, error) { return doc, nil }

// Identity returns the document unchanged
func Identity() Egress { return identityEgress{} }

// Func routes the document through fn and returns its result
func Func(fn func(doc string) (string, error)) Egress { return EgressFunc(fn) }

// FileEgress writes the document to a path, overwriting it
type FileEgress struct {
	Path string
	// ReturnDocument makes Route return the document instead of the path
	ReturnDocument bool
}

// ToFile writes documents to path and returns the path
func ToFile(path string) *FileEgress {
	return &FileEgress{Path: path}
}

func (f *FileEgress) Route(doc string) (string, error) {
	if err := writeText(f.Path, doc); err != nil {
		return "", err
	}
	log.Debug().Str("path", f.Path).Int("bytes", len(doc)).Msg("wrote aggregate")
	if f.ReturnDocument {
		return doc, nil
	}
	return f.Path, nil
}

func writeText(path, doc string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	if _, err := file.WriteString(doc); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// TemplateEgress writes chunk i to fmt.Sprintf(tmpl, i), e.g. "out_%02d.md"
func TemplateEgress(tmpl string) EgressTemplate {
	return func(index int) Egress {
		return ToFile(fmt.Sprintf(tmpl, index))
	}
}

// ChunkTemplateFor turns an output path into a chunk template: "ctx.md" -> "ctx_%02d.md".
// Paths already holding a fmt verb are used as they are.
func ChunkTemplateFor(output string) string {
	if output == "" {
		return DefaultChunkTemplate
	}
	if strings.Contains(output, "%") {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_%02d" + ext
}
