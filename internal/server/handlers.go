package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/jihokim/knowlog/internal/content"
	"github.com/jihokim/knowlog/internal/extract"
)

// maxJSONBody bounds JSON request bodies. Pasted text tops out at the
// normalizer cap, so 1 MiB leaves ample room.
const maxJSONBody = 1 << 20

// generateRequest is the JSON body for text and URL generation.
type generateRequest struct {
	InputType string `json:"input_type" validate:"required,oneof=text url"`
	Content   string `json:"content" validate:"required"`
}

// summaryRequest is the JSON body for note summarization.
type summaryRequest struct {
	Content      string   `json:"content" validate:"required"`
	KeyTakeaways []string `json:"key_takeaways"`
}

// handleHealth returns server health status, including a minimal provider
// probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.llmClient != nil {
		resp["provider_ok"] = s.llmClient.HealthCheck(r.Context())
	}
	if s.db != nil {
		resp["database_ok"] = s.db.Ping(r.Context()) == nil
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleNextDay reports the day number the next entry will receive.
func (s *Server) handleNextDay(w http.ResponseWriter, r *http.Request) {
	day, err := s.gen.NextDayNumber(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"next_day_number": day})
}

// handleGenerateStream runs the pipeline for text or URL input and streams
// progress as Server-Sent Events.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseGenerateRequest(w, r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.streamEvents(w, r, in)
}

// handleGeneratePreview runs the pipeline without streaming and returns
// the assembled entry.
func (s *Server) handleGeneratePreview(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseGenerateRequest(w, r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.gen.Generate(r.Context(), in)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleGenerateUpload runs the pipeline for an uploaded document and
// streams progress as Server-Sent Events. The file arrives as multipart
// form data under the "file" field. Extension and size are validated
// before the stream starts so rejections surface as plain HTTP errors,
// not as error events on an already-open stream.
func (s *Server) handleGenerateUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxFileSize+maxJSONBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file size exceeds %dMB limit", extract.MaxFileSize/1024/1024))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("missing file upload: %v", err))
		return
	}
	defer file.Close()

	if !extract.SupportsFile(header.Filename) {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type; supported: %s",
			strings.Join(extract.SupportedExtensions(), ", ")))
		return
	}
	if header.Size > extract.MaxFileSize {
		s.errorResponse(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file size exceeds %dMB limit", extract.MaxFileSize/1024/1024))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	in := content.Input{
		Type: content.TypeFile,
		File: &content.FileUpload{Name: header.Filename, Data: data},
	}
	s.streamEvents(w, r, in)
}

// handleSummarizeNote produces a short summary for a book reading note.
func (s *Server) handleSummarizeNote(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.gen.SummarizeNote(r.Context(), req.Content, req.KeyTakeaways)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"summary": summary})
}

// streamEvents relays pipeline events to the client as SSE. A client
// disconnect cancels the request context, which stops the pipeline.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, in content.Input) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	for event := range s.gen.Stream(r.Context(), in) {
		if err := sse.WriteGeneratorEvent(event); err != nil {
			log.Printf("[sse] write failed, dropping stream: %v", err)
			return
		}
	}
}

func (s *Server) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (content.Input, error) {
	var req generateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return content.Input{}, err
	}
	return content.Input{
		Type:    content.InputType(req.InputType),
		Content: req.Content,
	}, nil
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
