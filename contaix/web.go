package contaix

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	log "github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

var ignoreHTMLTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"nav":      true,
	"form":     true,
	"iframe":   true,
}

var ignoreAttributes = regexp.MustCompile(`(?i)comment|meta|footnote|masthead|related|shoutbox|sponsor|ad-break|agegate|pagination|pager|popup|tweet|twitter|social|nav|menu|authors|newsletter`)

// MarkdownOfSite downloads a page and returns it as markdown under a "# title" heading
func MarkdownOfSite(ctx context.Context, f Fetcher, urlStr string) (string, error) {
	baseURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	content, err := URLToContents(ctx, f, urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	title, markdown, err := htmlDocToMarkdown(content)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = baseURL.Host
	}
	log.Debug().Str("url", urlStr).Str("title", title).Msg("converted webpage")
	return fmt.Sprintf("# %s\n\nSource: %s\n\n%s", title, urlStr, markdown), nil
}

// HTMLToMarkdown strips page boilerplate and converts the rest to markdown
func HTMLToMarkdown(content []byte) (string, error) {
	_, markdown, err := htmlDocToMarkdown(content)
	return markdown, err
}

func htmlDocToMarkdown(content []byte) (string, string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	var page pageStripper
	page.strip(doc)
	markdown, err := htmltomarkdown.ConvertNode(doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return page.title, string(markdown), nil
}

// pageStripper removes boilerplate from a parsed page in place and
// remembers the first <title> that survives
type pageStripper struct {
	title string
}

func (p *pageStripper) strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			if isBoilerplate(c) {
				n.RemoveChild(c)
				c = next
				continue
			}
			if c.Data == "title" && p.title == "" {
				p.title = htmlNodeText(c)
			}
		}
		p.strip(c)
		c = next
	}
}

func isBoilerplate(n *html.Node) bool {
	if ignoreHTMLTags[n.Data] {
		return true
	}
	if n.Data == "body" || n.Data == "html" {
		return false
	}
	for _, attr := range n.Attr {
		if (attr.Key == "id" || attr.Key == "class") && ignoreAttributes.MatchString(attr.Val) {
			return true
		}
	}
	return false
}

func htmlNodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
