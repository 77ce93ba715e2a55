// Package extract reduces heterogeneous source inputs (web pages, uploaded
// documents) to plain text suitable for prompt construction. URL extraction
// isolates the main content of a page and preserves code blocks, inline code
// and link targets as markdown tokens that plain-text flattening would
// otherwise destroy.
package extract

import (
	"context"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jihokim/knowlog/internal/fetch"
)

// Content is the result of one extraction call.
type Content struct {
	Text   string
	Title  string
	Origin string // source URL or filename
}

// noiseSelectors are elements removed before content isolation. They
// contribute navigation, boilerplate or ads, never article text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"form", "button", "input", "select", "textarea",
	"iframe", "svg",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".cookie-banner", ".popup", ".share-buttons", ".comments",
}

// contentSelectors locate the main content container, in priority order.
var contentSelectors = []string{
	"main",
	"article",
	"#content",
	".content",
	".post",
	".entry-content",
	"body",
}

// URLExtractor fetches a web page and reduces it to readable plain text.
type URLExtractor struct {
	// UseBrowser enables a headless-browser fallback when the plain HTTP
	// response yields too little text (JavaScript-rendered pages).
	UseBrowser bool
}

// Extract fetches url and returns its readable main content. It fails with
// *fetch.Error on network/timeout/non-2xx failures and *ParseError when no
// readable content can be isolated.
func (e *URLExtractor) Extract(ctx context.Context, url string) (*Content, error) {
	result, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	content, err := fromHTML(result.HTML, url)
	if e.UseBrowser && (err != nil || fetch.ShouldUseBrowser(content.Text)) {
		if rendered, berr := fetch.BrowserSimple(ctx, url); berr == nil {
			if fromBrowser, perr := fromHTML(rendered, url); perr == nil {
				return fromBrowser, nil
			}
		} else {
			log.Printf("[extract] browser fallback failed for %s: %v", url, berr)
		}
	}
	return content, err
}

// fromHTML isolates the main content of an HTML document and flattens it to
// text with code/link tokens preserved.
func fromHTML(rawHTML, url string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &ParseError{URL: url, Message: "failed to parse HTML", Cause: err}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		return nil, &ParseError{URL: url, Message: "no content container found"}
	}

	rewriteCodeBlocks(main)
	rewriteInlineCode(main)
	rewriteLinks(main)

	text := collapseBlankLines(flattenText(main))
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{URL: url, Message: "no readable content found"}
	}

	return &Content{
		Text:   text,
		Title:  title,
		Origin: url,
	}, nil
}

// rewriteCodeBlocks replaces <pre><code class="language-x"> blocks with
// fenced markdown, keeping the language token when declared.
func rewriteCodeBlocks(sel *goquery.Selection) {
	sel.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}
		lang := ""
		if class, ok := code.Attr("class"); ok {
			for _, token := range strings.Fields(class) {
				if strings.HasPrefix(token, "language-") {
					lang = strings.TrimPrefix(token, "language-")
					break
				}
			}
		}
		replaceWithText(pre, "\n```"+lang+"\n"+code.Text()+"\n```\n")
	})
}

// rewriteInlineCode replaces remaining <code> elements with backtick spans.
func rewriteInlineCode(sel *goquery.Selection) {
	sel.Find("code").Each(func(_ int, code *goquery.Selection) {
		replaceWithText(code, "`"+code.Text()+"`")
	})
}

// rewriteLinks replaces anchors with [text](href) markdown form.
func rewriteLinks(sel *goquery.Selection) {
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := a.Text()
		if href != "" && text != "" {
			replaceWithText(a, "["+text+"]("+href+")")
		}
	})
}

// replaceWithText swaps an element for a raw text node, so backticks and
// newlines survive without HTML re-parsing.
func replaceWithText(sel *goquery.Selection, text string) {
	sel.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: text})
}

// flattenText collects every text node in document order, trimmed, one per
// line. Paragraph boundaries become line breaks; whitespace-only nodes are
// dropped.
func flattenText(sel *goquery.Selection) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				lines = append(lines, trimmed)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return strings.Join(lines, "\n")
}

// collapseBlankLines reduces runs of more than two consecutive blank lines
// to at most two.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	empty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			empty++
			if empty <= 2 {
				cleaned = append(cleaned, "")
			}
			continue
		}
		empty = 0
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}
