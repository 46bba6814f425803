// Package articlesource fetches encyclopedia article pages over HTTP
// and splits them into heading-bounded sections.
package articlesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ArticleSource = (*Source)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultDescriptionSuffix = "/description"
)

// Config holds configuration for the article source.
type Config struct {
	// BaseURL is the site root; article pages live at BaseURL/{id} (required).
	BaseURL string

	// DescriptionSuffix is appended to the article URL to reach the
	// companion extended-description page (default: /description).
	DescriptionSuffix string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Source fetches articles from the encyclopedia site.
type Source struct {
	client            *http.Client
	baseURL           string
	descriptionSuffix string
}

// NewSource creates an article source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: missing article source base url", domain.ErrInvalidInput)
	}
	if cfg.DescriptionSuffix == "" {
		cfg.DescriptionSuffix = DefaultDescriptionSuffix
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Source{
		client:            &http.Client{Timeout: cfg.Timeout},
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		descriptionSuffix: cfg.DescriptionSuffix,
	}, nil
}

// FetchArticle retrieves an article page and splits it into sections.
func (s *Source) FetchArticle(ctx context.Context, articleID string) (domain.Article, error) {
	page, err := s.fetch(ctx, s.baseURL+"/"+articleID)
	if err != nil {
		return domain.Article{}, err
	}

	article, err := parseArticle(articleID, page)
	if err != nil {
		return domain.Article{}, fmt.Errorf("parsing article %q: %w", articleID, err)
	}
	logger.Debug("Fetched %q: %d sections", articleID, len(article.Sections))
	return article, nil
}

// FetchPage retrieves the companion extended-description page.
func (s *Source) FetchPage(ctx context.Context, articleID string) (string, error) {
	return s.fetch(ctx, s.baseURL+"/"+articleID+s.descriptionSuffix)
}

func (s *Source) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// sectionNumber matches a leading dotted section number in a heading,
// e.g. "3.3. Subgroups".
var sectionNumber = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(.*)$`)

// parseArticle extracts metadata, the preamble and the heading-split
// sections from page HTML. Only headings carrying an id attribute
// start a new section; headings without one are emphasis, not
// structure.
func parseArticle(articleID, page string) (domain.Article, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return domain.Article{}, err
	}

	article := domain.Article{ID: articleID}
	parseMetadata(doc, &article)

	body := findElement(doc, atom.Body)
	if body == nil {
		return article, nil
	}
	content := findMain(body)

	var sections []domain.ArticleSection
	var current *strings.Builder
	preamble := &strings.Builder{}
	current = preamble
	ordinal := 0

	for n := content.FirstChild; n != nil; n = n.NextSibling {
		if isSectionHeading(n) {
			ordinal++
			number, heading := headingParts(n, ordinal)
			sections = append(sections, domain.ArticleSection{Number: number, Heading: heading})
			current = &strings.Builder{}
			continue
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.H1 {
			// The page title is not body content.
			continue
		}
		html.Render(current, n)
		if len(sections) > 0 {
			sections[len(sections)-1].Content = current.String()
		}
	}

	article.Preamble = preamble.String()
	article.Sections = sections
	return article, nil
}

// parseMetadata fills title, authors and dates from head elements.
func parseMetadata(doc *html.Node, article *domain.Article) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1:
				if article.OriginalTitle == "" {
					article.OriginalTitle = strings.TrimSpace(textContent(n))
				}
			case atom.Title:
				if article.OriginalTitle == "" && n.FirstChild != nil {
					article.OriginalTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Meta:
				name := attr(n, "name")
				content := attr(n, "content")
				switch name {
				case "author":
					for _, a := range strings.Split(content, ",") {
						if a = strings.TrimSpace(a); a != "" {
							article.Authors = append(article.Authors, a)
						}
					}
				case "created", "dc.date.created":
					if t, err := time.Parse("2006-01-02", content); err == nil {
						article.CreatedAt = t
					}
				case "updated", "dc.date.modified":
					if t, err := time.Parse("2006-01-02", content); err == nil {
						article.UpdatedAt = t
					}
				case "related":
					for _, r := range strings.Split(content, ",") {
						if r = strings.TrimSpace(r); r != "" {
							article.Related = append(article.Related, r)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// findMain prefers a <main> or <article> container over the raw body.
func findMain(body *html.Node) *html.Node {
	if main := findElement(body, atom.Main); main != nil {
		return main
	}
	if art := findElement(body, atom.Article); art != nil {
		return art
	}
	return body
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// isSectionHeading reports whether the node is an h2-h6 heading with
// a stable id attribute.
func isSectionHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return attr(n, "id") != ""
	}
	return false
}

// headingParts splits a heading into its dotted number and text,
// falling back to the section ordinal when no number is present.
func headingParts(n *html.Node, ordinal int) (number, heading string) {
	text := strings.TrimSpace(textContent(n))
	if m := sectionNumber.FindStringSubmatch(text); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return fmt.Sprintf("%d", ordinal), text
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
