package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihokim/knowlog/internal/fetch"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtract_MainContentAndTitle(t *testing.T) {
	server := serveHTML(t, `
	<html>
		<head><title>Go Channels Explained</title></head>
		<body>
			<nav>Site navigation</nav>
			<main>
				<h1>Channels</h1>
				<p>A channel is a typed conduit.</p>
			</main>
			<footer>Copyright</footer>
		</body>
	</html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Go Channels Explained", content.Title)
	assert.Equal(t, server.URL, content.Origin)
	assert.Contains(t, content.Text, "Channels")
	assert.Contains(t, content.Text, "A channel is a typed conduit.")
	assert.NotContains(t, content.Text, "Site navigation")
	assert.NotContains(t, content.Text, "Copyright")
}

func TestExtract_PreservesFencedCodeBlocks(t *testing.T) {
	server := serveHTML(t, `
	<html><body><article>
		<p>Example:</p>
		<pre><code class="language-go">func main() {
	fmt.Println("hi")
}</code></pre>
	</article></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "```go")
	assert.Contains(t, content.Text, `fmt.Println("hi")`)
	// Text nodes are trimmed during flattening, so a trailing fence closes
	// the text without a newline after it.
	assert.True(t, strings.HasSuffix(content.Text, "\n```"))
}

func TestExtract_CodeBlockWithoutLanguage(t *testing.T) {
	server := serveHTML(t, `
	<html><body><article>
		<pre><code>plain snippet</code></pre>
	</article></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "```\nplain snippet\n```")
}

func TestExtract_PreservesInlineCodeAndLinks(t *testing.T) {
	server := serveHTML(t, `
	<html><body><article>
		<p>Use <code>context.Context</code> as described in
		<a href="https://go.dev/blog/context">the blog</a>.</p>
	</article></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "`context.Context`")
	assert.Contains(t, content.Text, "[the blog](https://go.dev/blog/context)")
}

func TestExtract_AnchorWithoutHrefKeepsText(t *testing.T) {
	server := serveHTML(t, `
	<html><body><article>
		<p><a>bare anchor</a></p>
	</article></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "bare anchor")
	assert.NotContains(t, content.Text, "](")
}

func TestExtract_CollapsesExcessiveBlankLines(t *testing.T) {
	server := serveHTML(t, `
	<html><body><article>
		<pre><code>first


` + `

last</code></pre>
	</article></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.NotContains(t, content.Text, "\n\n\n\n")
	assert.Contains(t, content.Text, "first")
	assert.Contains(t, content.Text, "last")
}

func TestExtract_FetchError(t *testing.T) {
	server := serveHTML(t, "irrelevant")
	server.Close() // Connection refused

	e := &URLExtractor{}
	_, err := e.Extract(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	e := &URLExtractor{}
	_, err := e.Extract(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "403")
}

func TestExtract_NoReadableContent(t *testing.T) {
	server := serveHTML(t, `<html><body><script>var x = 1;</script></body></html>`)

	e := &URLExtractor{}
	_, err := e.Extract(context.Background(), server.URL)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCollapseBlankLines(t *testing.T) {
	in := "a\n\n\n\n\nb"
	assert.Equal(t, "a\n\n\nb", collapseBlankLines(in))

	unchanged := "a\n\nb"
	assert.Equal(t, unchanged, collapseBlankLines(unchanged))
}

func TestFlattenText_ParagraphBreaks(t *testing.T) {
	server := serveHTML(t, `
	<html><body><main>
		<p>First paragraph.</p>
		<p>Second paragraph.</p>
	</main></body></html>`)

	e := &URLExtractor{}
	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	lines := strings.Split(content.Text, "\n")
	assert.Contains(t, lines, "First paragraph.")
	assert.Contains(t, lines, "Second paragraph.")
}
