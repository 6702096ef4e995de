package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/extractor"
)

type stubDoc struct{ pages []string }

func (d stubDoc) NumPage() int { return len(d.pages) }
func (d stubDoc) PageText(n int) (string, error) { return d.pages[n-1], nil }
func (d stubDoc) Close() error { return nil }

type stubBackend struct {
	name  string
	avail error
	pages []string
}

func (b stubBackend) Name() string { return b.name }
func (b stubBackend) Available() error { return b.avail }
func (b stubBackend) Open(string) (extractor.Document, error) {
	return stubDoc{pages: b.pages}, nil
}

func newTestServer(apiKey string, backends ...extractor.Backend) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{APIKey: apiKey, MaxUploadBytes: 1 << 20}
	return NewServer(extractor.New(log, backends...), log, cfg)
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer("secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExtract_JSON(t *testing.T) {
	srv := newTestServer("", stubBackend{name: "stub", pages: []string{"Hello", "", "Bye"}})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/extract", "report.pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Path      string           `json:"path"`
		Backend   string           `json:"backend"`
		PageCount int              `json:"page_count"`
		Pages     []extractor.Page `json:"pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Path != "report.pdf" || got.Backend != "stub" || got.PageCount != 3 {
		t.Errorf("unexpected response: %+v", got)
	}
	if len(got.Pages) != 2 || got.Pages[1].Number != 3 {
		t.Errorf("unexpected pages: %+v", got.Pages)
	}
}

func TestExtract_Text(t *testing.T) {
	srv := newTestServer("", stubBackend{name: "stub", pages: []string{"Hello"}})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/extract?format=text", "a.pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if want := "=== PAGE 1 ===\nHello\n\n"; rec.Body.String() != want {
		t.Errorf("expected %q, got %q", want, rec.Body.String())
	}
}

func TestExtract_AllBackendsFailed(t *testing.T) {
	srv := newTestServer("",
		stubBackend{name: "missing", avail: errors.New("not installed")},
		stubBackend{name: "blank", pages: []string{""}},
	)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/extract", "scan.pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var got struct {
		Attempts []attemptJSON `json:"attempts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(got.Attempts))
	}
	if got.Attempts[0].Kind != "unavailable" || got.Attempts[1].Kind != "empty result" {
		t.Errorf("unexpected attempts: %+v", got.Attempts)
	}
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestExtract_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	cfg := config.Config{MaxUploadBytes: 1 << 20}
	srv := NewServer(extractor.New(log, stubBackend{name: "stub", pages: []string{"Hello"}}), log, cfg)

	for _, target := range []string{"/api/extract", "/api/extract?format=text"} {
		logs.Reset()
		srv.ServeHTTP(failingWriter{httptest.NewRecorder()}, uploadRequest(t, target, "a.pdf", []byte("%PDF-1.4")))
		if !strings.Contains(logs.String(), "write extract response") || !strings.Contains(logs.String(), "client went away") {
			t.Errorf("%s: expected write failure to be logged, got:\n%s", target, logs.String())
		}
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	srv := newTestServer("", stubBackend{name: "stub", pages: []string{"x"}})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/extract", "notes.txt", []byte("hi")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExtract_RequiresAuthWhenKeySet(t *testing.T) {
	srv := newTestServer("secret", stubBackend{name: "stub", pages: []string{"x"}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/extract", "a.pdf", []byte("%PDF")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := uploadRequest(t, "/api/extract", "a.pdf", []byte("%PDF"))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = uploadRequest(t, "/api/extract", "a.pdf", []byte("%PDF"))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestBackends(t *testing.T) {
	srv := newTestServer("", stubBackend{name: "a"}, stubBackend{name: "b"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/backends", nil))
	if !strings.Contains(rec.Body.String(), `["a","b"]`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.pdf": "passwd.pdf",
		"":                     "unnamed",
		"report.pdf":           "report.pdf",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
