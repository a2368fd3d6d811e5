package contaix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	log "github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is a URL found in a document, with the text that came with it
type Link struct {
	Context string
	URL     string
}

// Extractor pulls links out of a document
type Extractor func(doc string) []Link

var (
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	bareURLRegex      = regexp.MustCompile(`https?://[^\s]+`)
	urlOnlyRegex      = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+(?:/[^\s()<>\[\]{},"']*)?`)
	htmlLinkRegex     = regexp.MustCompile(`<a\s+(?:[^>]*?\s+)?href="([^"]*)"[^>]*>(.*?)</a>`)
	articleRegex      = regexp.MustCompile(`- \*\*\[(.*?)\]\((.*?)\)\*\*`)
	titleSanitizer    = regexp.MustCompile(`[^\w\-_. ]`)
	sectionSanitizer  = regexp.MustCompile(`[^\w\s]`)
)

// ExtractURLs runs an extractor over doc; a nil extractor uses MarkdownLinks
func ExtractURLs(doc string, extract Extractor) []Link {
	if extract == nil {
		extract = MarkdownLinks
	}
	return extract(doc)
}

// MarkdownLinks extracts [context](url) hyperlinks
func MarkdownLinks(doc string) []Link {
	var links []Link
	for _, m := range markdownLinkRegex.FindAllStringSubmatch(doc, -1) {
		links = append(links, Link{Context: m[1], URL: m[2]})
	}
	return links
}

// SurroundingContext extracts bare URLs with up to n characters of text on each side
func SurroundingContext(n int) Extractor {
	return func(doc string) []Link {
		var links []Link
		for _, loc := range bareURLRegex.FindAllStringIndex(doc, -1) {
			start := max(0, loc[0]-n)
			end := min(len(doc), loc[1]+n)
			links = append(links, Link{
				Context: strings.TrimSpace(doc[start:end]),
				URL:     doc[loc[0]:loc[1]],
			})
		}
		return links
	}
}

// URLsOnly extracts URLs with no context, dropping trailing punctuation
func URLsOnly(doc string) []Link {
	var links []Link
	for _, u := range urlOnlyRegex.FindAllString(doc, -1) {
		links = append(links, Link{URL: strings.TrimRight(u, `)].,;:!?*"'`)})
	}
	return links
}

// HTMLLinks extracts anchor text and href from <a> tags
func HTMLLinks(doc string) []Link {
	var links []Link
	for _, m := range htmlLinkRegex.FindAllStringSubmatch(doc, -1) {
		links = append(links, Link{Context: m[2], URL: m[1]})
	}
	return links
}

// ASTLinks parses doc as markdown and returns its links and autolinks, skipping
// anything inside code spans and blocks
func ASTLinks(doc string) []Link {
	src := []byte(doc)
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var links []Link
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, Link{Context: nodeText(node, src), URL: string(node.Destination)})
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			links = append(links, Link{Context: string(node.Label(src)), URL: string(node.URL(src))})
		}
		return ast.WalkContinue, nil
	})
	return links
}

func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(nodeText(c, src))
		}
	}
	return buf.String()
}

// Status is the outcome of checking one URL: an HTTP status code or an error
type Status struct {
	Code int    `json:"code,omitempty"`
	Err  string `json:"error,omitempty"`
}

// OK tells whether the URL answered with a success or redirect status
func (s Status) OK() bool {
	return s.Err == "" && s.Code >= http.StatusOK && s.Code < http.StatusBadRequest
}

func (s Status) String() string {
	if s.Err != "" {
		return s.Err
	}
	return fmt.Sprintf("%d", s.Code)
}

// VerifyURLs sends a HEAD request to every markdown link of doc, using up to
// workers concurrent requests, and reports the status of each URL
func VerifyURLs(ctx context.Context, f Fetcher, doc string, workers int) (map[string]Status, error) {
	if workers <= 0 {
		workers = 1
	}
	urls := uniqueURLs(MarkdownLinks(doc))
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]Status, len(urls))
	)
	for _, u := range urls {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			status := headStatus(ctx, f, u)
			mu.Lock()
			out[u] = status
			mu.Unlock()
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			out[u] = Status{Err: err.Error()}
			mu.Unlock()
		}
	}
	wg.Wait()
	return out, nil
}

func headStatus(ctx context.Context, f Fetcher, u string) Status {
	resp, err := f.Head(ctx, u)
	if err != nil {
		log.Debug().Err(err).Str("url", u).Msg("url check failed")
		return Status{Err: err.Error()}
	}
	resp.Body.Close()
	return Status{Code: resp.StatusCode}
}

func uniqueURLs(links []Link) []string {
	seen := make(map[string]struct{}, len(links))
	var urls []string
	for _, l := range links {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		urls = append(urls, l.URL)
	}
	return urls
}

// DownloadOptions tune DownloadArticles
type DownloadOptions struct {
	// SaveNonPDF keeps non-PDF responses as <title>_non_pdf.html and bad PDFs as <title>_invalid.pdf
	SaveNonPDF bool
	// Progress is called after each article with the number done so far
	Progress func(done, total int, title string)
}

// Article is one "- **[title](url)**" entry of a reading list
type Article struct {
	Title string
	URL   string
}

// ParseArticles returns the "- **[title](url)**" entries of doc
func ParseArticles(doc string) []Article {
	var articles []Article
	for _, m := range articleRegex.FindAllStringSubmatch(doc, -1) {
		articles = append(articles, Article{Title: m[1], URL: m[2]})
	}
	return articles
}

// DownloadArticles saves the PDFs listed in doc to dir, which must exist, and
// returns the URLs that failed or were not valid PDFs
func DownloadArticles(ctx context.Context, f Fetcher, doc, dir string, opts DownloadOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	articles := ParseArticles(doc)
	var failed []string
	for i, a := range articles {
		if err := downloadArticle(ctx, f, a, dir, opts.SaveNonPDF); err != nil {
			log.Warn().Err(err).Str("title", a.Title).Str("url", a.URL).Msg("article not saved")
			failed = append(failed, a.URL)
		} else {
			log.Info().Str("title", a.Title).Msg("downloaded article")
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(articles), a.Title)
		}
	}
	return failed, nil
}

var errNotPDF = errors.New("not a PDF")

func downloadArticle(ctx context.Context, f Fetcher, a Article, dir string, saveNonPDF bool) error {
	name := titleSanitizer.ReplaceAllString(a.Title, "_")
	resp, err := f.Get(ctx, a.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/pdf") {
		if saveNonPDF {
			if err := os.WriteFile(filepath.Join(dir, name+"_non_pdf.html"), body, 0644); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: content type %q", errNotPDF, contentType)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		if saveNonPDF {
			if err := os.WriteFile(filepath.Join(dir, name+"_invalid.pdf"), body, 0644); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: invalid content", errNotPDF)
	}
	return os.WriteFile(filepath.Join(dir, name+".pdf"), body, 0644)
}

// Section is a "### heading" of a reading list with the text below it
type Section struct {
	Title   string
	Content string
}

// ParseSections splits doc on lines starting with marker (e.g. "###")
func ParseSections(doc, marker string) []Section {
	var sections []Section
	var current *Section
	var body []string
	flush := func() {
		if current != nil {
			current.Content = strings.Join(body, "\n")
			sections = append(sections, *current)
		}
	}
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, marker+" ") {
			flush()
			current = &Section{Title: strings.TrimSpace(strings.TrimPrefix(line, marker+" "))}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

// SectionDirName turns a heading into a snake_case directory name
func SectionDirName(title string) string {
	s := strings.TrimSpace(sectionSanitizer.ReplaceAllString(title, ""))
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

// DownloadArticlesBySection downloads each "### section" of doc into its own
// subdirectory of rootDir and returns the failed URLs per section title
func DownloadArticlesBySection(ctx context.Context, f Fetcher, doc, rootDir string, opts DownloadOptions) (map[string][]string, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", rootDir, err)
	}
	failed := make(map[string][]string)
	for _, section := range ParseSections(doc, "###") {
		dir := filepath.Join(rootDir, SectionDirName(section.Title))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return failed, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		log.Info().Str("section", section.Title).Str("dir", dir).Msg("processing section")
		urls, err := DownloadArticles(ctx, f, section.Content, dir, opts)
		if err != nil {
			return failed, err
		}
		failed[section.Title] = urls
	}
	return failed, nil
}

// SortedStatuses returns the checked URLs in a stable order
func SortedStatuses(statuses map[string]Status) []string {
	urls := make([]string, 0, len(statuses))
	for u := range statuses {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
