package client

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"blog-comment-bot/internal/metrics"
)

// maxPageBytes caps how much of a post page is read
const maxPageBytes = 5 << 20

// ErrNoArticle means the page had no extractable post body
var ErrNoArticle = errors.New("post body not found")

// SitemapEntry is one <url> of the blog sitemap
type SitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapURLSet struct {
	URLs []SitemapEntry `xml:"url"`
}

// BlogClient reads published posts from the blog
type BlogClient interface {
	// FetchPostContent returns the plain text of a post without its comment section
	FetchPostContent(ctx context.Context, postID string) (string, error)
	// FetchSitemap returns every entry of the blog sitemap
	FetchSitemap(ctx context.Context) ([]SitemapEntry, error)
	// PostURL is the public address of a post
	PostURL(postID string) string
}

// blogClient implements BlogClient over HTTP
type blogClient struct {
	baseURL    string
	sitemapURL string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewBlogClient creates a new blog client. An empty sitemapURL defaults to
// {baseURL}/sitemap.xml.
func NewBlogClient(baseURL, sitemapURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) BlogClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if sitemapURL == "" {
		sitemapURL = baseURL + "/sitemap.xml"
	}
	return &blogClient{
		baseURL:    baseURL,
		sitemapURL: sitemapURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

func (c *blogClient) PostURL(postID string) string {
	return fmt.Sprintf("%s/blog/%s/", c.baseURL, strings.Trim(postID, "/"))
}

func (c *blogClient) FetchPostContent(ctx context.Context, postID string) (string, error) {
	pageURL := c.PostURL(postID)
	body, err := c.get(ctx, pageURL, "/blog/"+strings.Trim(postID, "/")+"/")
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := html.Parse(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse post page: %w", err)
	}

	text, err := ExtractArticleText(doc)
	if err != nil {
		c.logger.Warn("Post page has no extractable body", zap.String("post_id", postID))
		return "", err
	}
	return text, nil
}

func (c *blogClient) FetchSitemap(ctx context.Context) ([]SitemapEntry, error) {
	body, err := c.get(ctx, c.sitemapURL, "/sitemap.xml")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var set sitemapURLSet
	if err := xml.NewDecoder(io.LimitReader(body, maxPageBytes)).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap: %w", err)
	}
	for i := range set.URLs {
		set.URLs[i].Loc = strings.TrimSpace(set.URLs[i].Loc)
		set.URLs[i].LastMod = strings.TrimSpace(set.URLs[i].LastMod)
	}
	return set.URLs, nil
}

// get issues a GET and returns the body of a 2xx response
func (c *blogClient) get(ctx context.Context, url, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(endpoint, http.MethodGet, statusCode, duration, err)

	if err != nil {
		c.logger.Error("Blog request failed",
			zap.String("url", url),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		c.logger.Warn("Blog returned non-success status",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ExtractArticleText returns the whitespace-collapsed text of the first
// <article>, skipping the comment section, scripts and styles.
func ExtractArticleText(doc *html.Node) (string, error) {
	article := findFirst(doc, atom.Article)
	if article == nil {
		return "", ErrNoArticle
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElement(n) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(article)

	text := strings.Join(strings.Fields(b.String()), " ")
	if text == "" {
		return "", ErrNoArticle
	}
	return text, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, a); found != nil {
			return found
		}
	}
	return nil
}

func skipElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, "comment-section") {
			return true
		}
	}
	return false
}
