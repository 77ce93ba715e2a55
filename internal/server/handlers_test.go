package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihokim/knowlog/internal/content"
	"github.com/jihokim/knowlog/internal/extract"
	"github.com/jihokim/knowlog/internal/generator"
	"github.com/jihokim/knowlog/internal/llm"
	"github.com/jihokim/knowlog/internal/server/ratelimit"
)

const testAdminKey = "test-admin-key"

// fakeGenerator scripts pipeline results and records the input it was
// invoked with.
type fakeGenerator struct {
	nextDay    int
	nextDayErr error
	events     []generator.Event
	entry      *generator.Entry
	genErr     error
	summary    string
	summaryErr error

	lastInput     content.Input
	lastTakeaways []string
}

func (f *fakeGenerator) NextDayNumber(_ context.Context) (int, error) {
	return f.nextDay, f.nextDayErr
}

func (f *fakeGenerator) Stream(_ context.Context, in content.Input) <-chan generator.Event {
	f.lastInput = in
	ch := make(chan generator.Event)
	go func() {
		defer close(ch)
		for _, e := range f.events {
			ch <- e
		}
	}()
	return ch
}

func (f *fakeGenerator) Generate(_ context.Context, in content.Input) (*generator.Entry, error) {
	f.lastInput = in
	return f.entry, f.genErr
}

func (f *fakeGenerator) SummarizeNote(_ context.Context, noteContent string, keyTakeaways []string) (string, error) {
	f.lastInput = content.Input{Type: content.TypeText, Content: noteContent}
	f.lastTakeaways = keyTakeaways
	return f.summary, f.summaryErr
}

func newTestServer(gen EntryGenerator) *Server {
	return &Server{
		gen:         gen,
		rateLimiter: ratelimit.NewLimiter(nil),
		validate:    validator.New(),
	}
}

func doRequest(s *Server, req *http.Request, withKey bool) *httptest.ResponseRecorder {
	if withKey {
		req.Header.Set("X-API-Key", testAdminKey)
	}
	rec := httptest.NewRecorder()
	s.routes(testAdminKey).ServeHTTP(rec, req)
	return rec
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	rec := doRequest(s, httptest.NewRequest("GET", "/health", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGenerateEndpointsRequireAPIKey(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/generate/next-day"},
		{"POST", "/generate/stream"},
		{"POST", "/generate/preview"},
		{"POST", "/generate/upload"},
		{"POST", "/generate/summary"},
	}

	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			rec := doRequest(s, httptest.NewRequest(p.method, p.path, nil), false)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestNextDay(t *testing.T) {
	s := newTestServer(&fakeGenerator{nextDay: 42})

	rec := doRequest(s, httptest.NewRequest("GET", "/generate/next-day", nil), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"next_day_number":42}`, rec.Body.String())
}

func TestGenerateStream_WritesSSEEvents(t *testing.T) {
	gen := &fakeGenerator{events: []generator.Event{
		generator.DayNumberEvent{DayNumber: 3},
		generator.ContentChunkEvent{Chunk: "Hello"},
		generator.TitleEvent{Title: "A Title"},
		generator.ExcerptEvent{Excerpt: "An excerpt."},
		generator.CompleteEvent{Success: true, DayNumber: 3, Title: "A Title", Excerpt: "An excerpt.", Content: "Hello"},
	}}
	s := newTestServer(gen)

	body := strings.NewReader(`{"input_type":"text","content":"learned something"}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/stream", body), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	out := rec.Body.String()
	assert.Contains(t, out, "event: day_number\ndata: {\"day_number\":3}\n\n")
	assert.Contains(t, out, "event: content_chunk\ndata: {\"chunk\":\"Hello\"}\n\n")
	assert.Contains(t, out, "event: title\n")
	assert.Contains(t, out, "event: excerpt\n")
	assert.Contains(t, out, "event: complete\n")

	assert.Equal(t, content.TypeText, gen.lastInput.Type)
	assert.Equal(t, "learned something", gen.lastInput.Content)
}

func TestGenerateStream_ErrorEventOnFailure(t *testing.T) {
	gen := &fakeGenerator{events: []generator.Event{
		generator.DayNumberEvent{DayNumber: 1},
		generator.ErrorEvent{Message: "provider unavailable"},
	}}
	s := newTestServer(gen)

	body := strings.NewReader(`{"input_type":"url","content":"http://example.com"}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/stream", body), true)

	assert.Equal(t, http.StatusOK, rec.Code, "stream failures ride inside the SSE body")
	assert.Contains(t, rec.Body.String(), "event: error\ndata: {\"error\":\"provider unavailable\"}\n\n")
}

func TestGenerateStream_RejectsBadRequests(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing content", `{"input_type":"text"}`},
		{"file type over json", `{"input_type":"file","content":"x"}`},
		{"unknown type", `{"input_type":"audio","content":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, httptest.NewRequest("POST", "/generate/stream", strings.NewReader(tt.body)), true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGeneratePreview(t *testing.T) {
	gen := &fakeGenerator{entry: &generator.Entry{
		DayNumber: 7,
		Title:     "Preview Title",
		Excerpt:   "Preview excerpt.",
		Content:   "Body.",
	}}
	s := newTestServer(gen)

	body := strings.NewReader(`{"input_type":"text","content":"source"}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/preview", body), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"day_number":7,"title":"Preview Title","excerpt":"Preview excerpt.","content":"Body."}`, rec.Body.String())
}

func TestGeneratePreview_ProviderFailureMapsTo502(t *testing.T) {
	gen := &fakeGenerator{genErr: &llm.ProviderError{Provider: "gemini", Message: "overloaded"}}
	s := newTestServer(gen)

	body := strings.NewReader(`{"input_type":"text","content":"source"}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/preview", body), true)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "overloaded")
}

func TestGenerateUpload_StreamsFromFile(t *testing.T) {
	gen := &fakeGenerator{events: []generator.Event{
		generator.DayNumberEvent{DayNumber: 1},
		generator.CompleteEvent{Success: true, DayNumber: 1},
	}}
	s := newTestServer(gen)

	rec := doRequest(s, multipartUpload(t, "notes.md", []byte("# Notes\ncontent")), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: complete\n")

	require.NotNil(t, gen.lastInput.File)
	assert.Equal(t, content.TypeFile, gen.lastInput.Type)
	assert.Equal(t, "notes.md", gen.lastInput.File.Name)
	assert.Equal(t, []byte("# Notes\ncontent"), gen.lastInput.File.Data)
}

func multipartUpload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/generate/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGenerateUpload_RejectsUnsupportedExtensionBeforeStreaming(t *testing.T) {
	gen := &fakeGenerator{events: []generator.Event{
		generator.DayNumberEvent{DayNumber: 1},
	}}
	s := newTestServer(gen)

	rec := doRequest(s, multipartUpload(t, "paper.pdf", []byte("%PDF-")), true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), "plain HTTP error, not an SSE stream")
	assert.Contains(t, rec.Body.String(), "unsupported file type")
	assert.NotContains(t, rec.Body.String(), "event:")
	assert.Nil(t, gen.lastInput.File, "pipeline never invoked")
}

func TestGenerateUpload_RejectsOversizeFileBeforeStreaming(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestServer(gen)

	oversize := bytes.Repeat([]byte("a"), extract.MaxFileSize+1)
	rec := doRequest(s, multipartUpload(t, "big.md", oversize), true)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "exceeds 10MB limit")
	assert.Nil(t, gen.lastInput.File, "pipeline never invoked")
}

func TestGenerateUpload_MissingFile(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	req := httptest.NewRequest("POST", "/generate/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	rec := doRequest(s, req, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeNote(t *testing.T) {
	gen := &fakeGenerator{summary: "Short summary."}
	s := newTestServer(gen)

	body := strings.NewReader(`{"content":"note body","key_takeaways":["first","second"]}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/summary", body), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"summary":"Short summary."}`, rec.Body.String())
	assert.Equal(t, []string{"first", "second"}, gen.lastTakeaways)
}

func TestSummarizeNote_RequiresContent(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	body := strings.NewReader(`{"key_takeaways":["only takeaways"]}`)
	rec := doRequest(s, httptest.NewRequest("POST", "/generate/summary", body), true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeGenerator{})

	rec := doRequest(s, httptest.NewRequest("OPTIONS", "/generate/stream", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
}
