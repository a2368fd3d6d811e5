package contaix

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/rs/zerolog/log"
)

// Separator joins the formatted entries of an aggregate
const Separator = "\n\n"

// Formatter renders one store entry as a fragment of the aggregate
type Formatter func(key, value string) (string, error)

// LeadFunc produces an optional entry placed before every other entry
type LeadFunc func(s Store) (entry Entry, ok bool, err error)

// Config holds the options of a store aggregation
type Config struct {
	// Exclude lists keys dropped before aggregation
	Exclude []string
	// Suffix restricts keys to this extension whenever the pipeline is not empty
	Suffix string
	// MinDuplicatedLines enables line-block deduplication with this threshold
	MinDuplicatedLines int
	// MaxChars truncates every value to this many characters
	MaxChars int
	// ChunkSize splits the store into sub-stores of this many entries
	ChunkSize int
	// Egress routes an unchunked aggregate; nil returns the document
	Egress Egress
	// ChunkEgress routes each chunk; nil writes DefaultChunkTemplate files
	ChunkEgress EgressTemplate
	// Formatter renders entries; nil means CodeSection
	Formatter Formatter
	// Lead adds a leading entry such as a README
	Lead LeadFunc
}

// Result is what an aggregation returned
type Result struct {
	// Document is the egress result of an unchunked run (document or path)
	Document string
	// Chunks holds the egress result of every chunk, in order
	Chunks []string
}

// Aggregate formats each entry of s in order, joins the fragments with a blank
// line and routes the document. Nothing is routed if reading or formatting fails.
func Aggregate(s Store, format Formatter, egress Egress) (string, error) {
	if format == nil {
		format = CodeSection
	}
	if egress == nil {
		egress = Identity()
	}
	keys, err := s.Keys()
	if err != nil {
		return "", err
	}
	fragments := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := s.Get(k)
		if err != nil {
			return "", err
		}
		fragment, err := format(k, v)
		if err != nil {
			return "", fmt.Errorf("failed to format %s: %w", k, err)
		}
		fragments = append(fragments, fragment)
	}
	return egress.Route(strings.Join(fragments, Separator))
}

// AggregateStore runs the configured pipeline over s, then aggregates it whole or chunk by chunk
func AggregateStore(s Store, cfg Config) (Result, error) {
	wrapped := cfg.Pipeline()(s)
	if cfg.Lead != nil {
		entry, ok, err := cfg.Lead(wrapped)
		if err != nil {
			return Result{}, err
		}
		if ok {
			wrapped = NewOverlay(NewMapStore(entry), wrapped)
		}
	}
	if cfg.ChunkSize <= 0 {
		doc, err := Aggregate(wrapped, cfg.Formatter, cfg.Egress)
		if err != nil {
			return Result{}, err
		}
		return Result{Document: doc}, nil
	}

	chunks, err := Chunk(wrapped, cfg.ChunkSize)
	if err != nil {
		return Result{}, err
	}
	egressFor := cfg.ChunkEgress
	if egressFor == nil {
		egressFor = TemplateEgress(DefaultChunkTemplate)
	}
	res := Result{Chunks: make([]string, 0, len(chunks))}
	for i, chunk := range chunks {
		out, err := Aggregate(chunk, cfg.Formatter, egressFor(i+1))
		if err != nil {
			return res, fmt.Errorf("failed to aggregate chunk %d: %w", i+1, err)
		}
		log.Debug().Int("chunk", i+1).Int("of", len(chunks)).Msg("aggregated chunk")
		res.Chunks = append(res.Chunks, out)
	}
	return res, nil
}

// CodeAggregate resolves a source and aggregates its code with CodeSection by default
func CodeAggregate(ctx context.Context, r *Resolver, src Source, cfg Config) (Result, error) {
	if r == nil {
		r = NewResolver(nil)
	}
	s, err := r.Resolve(ctx, src)
	if err != nil {
		return Result{}, err
	}
	if cfg.Formatter == nil {
		cfg.Formatter = CodeSection
	}
	return AggregateStore(s, cfg)
}

// CodeSection renders "## key" followed by a fenced block of the trimmed value
func CodeSection(key, value string) (string, error) {
	return fmt.Sprintf("## %s\n\n```%s\n%s\n```", key, detectLanguage(key), strings.TrimSpace(value)), nil
}

// FencedSection renders every entry with the same fence language
func FencedSection(lang string) Formatter {
	return func(key, value string) (string, error) {
		return fmt.Sprintf("## %s\n\n```%s\n%s\n```", key, lang, strings.TrimSpace(value)), nil
	}
}

// MarkdownSection renders "## key" followed by the value as is, for markdown stores
func MarkdownSection(key, value string) (string, error) {
	return fmt.Sprintf("## %s\n\n%s", key, strings.TrimSpace(value)), nil
}

// ValueOnly renders just the value
func ValueOnly(_, value string) (string, error) {
	return value, nil
}

// ParentReadme looks for a file named name (e.g. README.md) in the store's root
// directory, then in its parent, and offers it as the leading entry
func ParentReadme(name string) LeadFunc {
	return func(s Store) (Entry, bool, error) {
		root := rootOf(s)
		if root == "" {
			return Entry{}, false, nil
		}
		for _, dir := range []string{root, filepath.Dir(root)} {
			path := filepath.Join(dir, name)
			content, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return Entry{}, false, fmt.Errorf("failed to read %s: %w", path, err)
			}
			key, err := filepath.Rel(root, path)
			if err != nil {
				key = name
			}
			return Entry{Key: filepath.ToSlash(key), Value: decodeText(content)}, true, nil
		}
		return Entry{}, false, nil
	}
}

// detectLanguage detects the language based on the file extension
func detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".go":
		return "go"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".py":
		return "python"
	case ".java":
		return "java"
	case ".c", ".h":
		return "c"
	case ".cpp":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".swift":
		return "swift"
	case ".rs":
		return "rust"
	case ".sh":
		return "bash"
	case ".yml", ".yaml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".md":
		return "markdown"
	case ".html":
		return "html"
	case ".css":
		return "css"
	case ".sql":
		return "sql"
	case ".dockerfile":
		return "dockerfile"
	default:
		return ""
	}
}
