package contaix

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gonfva/docxlib"
	"github.com/ledongthuc/pdf"
)

// ErrNoConverter is returned for extensions without a registered converter
var ErrNoConverter = errors.New("no converter for extension")

// Converter turns raw file bytes into markdown
type Converter func(data []byte) (string, error)

var (
	convertersMu sync.RWMutex
	converters   = map[string]Converter{
		".md":    passthrough,
		".txt":   passthrough,
		".html":  HTMLToMarkdown,
		".htm":   HTMLToMarkdown,
		".pdf":   pdfToMarkdown,
		".docx":  docxToMarkdown,
		".xlsx":  xlsxToMarkdown,
		".ipynb": NotebookToMarkdown,
	}
)

// AddConverter registers (or replaces) the converter for an extension such as ".rst"
func AddConverter(ext string, c Converter) {
	convertersMu.Lock()
	defer convertersMu.Unlock()
	converters[normalizeExt(ext)] = c
}

// ConverterFor returns the converter registered for ext
func ConverterFor(ext string) (Converter, bool) {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	c, ok := converters[normalizeExt(ext)]
	return c, ok
}

// BytesToMarkdown converts data according to its extension
func BytesToMarkdown(data []byte, ext string) (string, error) {
	c, ok := ConverterFor(ext)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoConverter, ext)
	}
	return c(data)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func passthrough(data []byte) (string, error) {
	return decodeText(data), nil
}

func pdfToMarkdown(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}
	var text strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(content)
		text.WriteString("\n\n")
	}
	return strings.TrimSpace(text.String()), nil
}

func docxToMarkdown(data []byte) (string, error) {
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}
	var paragraphs []string
	for _, paragraph := range doc.Paragraphs() {
		var line strings.Builder
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				line.WriteString(child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				line.WriteString(child.Link.Run.Text.Text)
			}
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// NotebookToMarkdown renders a Jupyter notebook: markdown cells as is, code cells fenced
func NotebookToMarkdown(data []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("failed to parse notebook: %w", err)
	}
	lang := nb.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = "python"
	}
	var parts []string
	for _, cell := range nb.Cells {
		src := strings.TrimSpace(cellSource(cell.Source))
		if src == "" {
			continue
		}
		switch cell.CellType {
		case "code":
			parts = append(parts, "```"+lang+"\n"+src+"\n```")
		default:
			parts = append(parts, src)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// cellSource accepts both the list-of-lines and the single-string notebook forms
func cellSource(raw json.RawMessage) string {
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// TruncateText keeps at most limit characters, marking the cut with marker
// (" [...]" when empty). The marker counts toward limit.
func TruncateText(s string, limit int, marker string) string {
	if limit <= 0 || len([]rune(s)) <= limit {
		return s
	}
	if marker == "" {
		marker = " [...]"
	}
	keep := limit - len([]rune(marker))
	if keep <= 0 {
		return truncateRunes(marker, limit)
	}
	return truncateRunes(s, keep) + marker
}

// MarkdownFiles is a read-only store of the convertible files under a directory;
// values are converted to markdown on read
type MarkdownFiles struct {
	root string
	once sync.Once
	keys []string
	err  error
}

// NewMarkdownFiles creates a converting store rooted at dir
func NewMarkdownFiles(dir string) *MarkdownFiles {
	return &MarkdownFiles{root: dir}
}

func (m *MarkdownFiles) Root() string { return m.root }

func (m *MarkdownFiles) Keys() ([]string, error) {
	m.once.Do(func() {
		m.err = filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != m.root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := ConverterFor(filepath.Ext(path)); !ok {
				return nil
			}
			rel, err := filepath.Rel(m.root, path)
			if err != nil {
				return err
			}
			m.keys = append(m.keys, filepath.ToSlash(rel))
			return nil
		})
		sort.Strings(m.keys)
	})
	if m.err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", m.root, m.err)
	}
	return append([]string(nil), m.keys...), nil
}

func (m *MarkdownFiles) Len() (int, error) {
	keys, err := m.Keys()
	return len(keys), err
}

func (m *MarkdownFiles) Get(key string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	md, err := BytesToMarkdown(data, filepath.Ext(key))
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", key, err)
	}
	return md, nil
}
