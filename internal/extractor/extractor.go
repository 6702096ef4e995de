package extractor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Document is an opened PDF. The caller that opened it owns it and must Close it.
type Document interface {
	NumPage() int
	// PageText returns the text of page n (1-based). Empty text is not an error.
	PageText(n int) (string, error)
	Close() error
}

// Backend is one text-extraction mechanism.
type Backend interface {
	Name() string
	// Available returns nil when the backend can run in this environment,
	// otherwise the reason it cannot.
	Available() error
	Open(path string) (Document, error)
}

// Page is one page of extracted text.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// Result is a successful extraction.
type Result struct {
	Path      string          `json:"path"`
	Backend   string          `json:"backend"`
	PageCount int             `json:"page_count"`
	Pages     []Page          `json:"pages"`
	Attempts  []*BackendError `json:"-"` // failures before the winning backend
}

// Text returns the result in the marked page format.
func (r *Result) Text() string {
	var b strings.Builder
	Format(&b, r.Pages)
	return b.String()
}

// Extractor tries backends in declared order until one yields text.
type Extractor struct {
	backends []Backend
	log      *slog.Logger
}

// New creates an Extractor over backends in priority order.
func New(log *slog.Logger, backends ...Backend) *Extractor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{backends: backends, log: log}
}

// Extract runs path through backends without logging.
func Extract(path string, backends []Backend) (*Result, error) {
	return New(nil, backends...).Extract(path)
}

// Backends returns the names of the configured backends in priority order.
func (e *Extractor) Backends() []string {
	names := make([]string, len(e.backends))
	for i, b := range e.backends {
		names[i] = b.Name()
	}
	return names
}

// Extract returns the text of the first backend that produces any. It fails
// with *FileNotFoundError before touching a backend if path is not a readable
// file, and with *AllBackendsFailedError once every backend has been tried.
func (e *Extractor) Extract(path string) (*Result, error) {
	if err := checkReadable(path); err != nil {
		return nil, err
	}

	var failures []*BackendError
	for _, b := range e.backends {
		name := b.Name()
		start := time.Now()

		res, ferr := e.attempt(b, path)
		if ferr != nil {
			e.log.Debug("backend failed",
				"backend", name,
				"path", path,
				"kind", ferr.Kind.String(),
				"error", ferr.Err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			failures = append(failures, ferr)
			continue
		}

		res.Attempts = failures
		e.log.Info("extracted pdf text",
			"backend", name,
			"path", path,
			"pages", res.PageCount,
			"pages_with_text", len(res.Pages),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res, nil
	}

	return nil, &AllBackendsFailedError{Path: path, Failures: failures}
}

func (e *Extractor) attempt(b Backend, path string) (*Result, *BackendError) {
	name := b.Name()
	if err := b.Available(); err != nil {
		return nil, &BackendError{Backend: name, Kind: KindUnavailable, Err: err}
	}

	doc, err := b.Open(path)
	if err != nil {
		return nil, &BackendError{Backend: name, Kind: KindOpenFailed, Err: err}
	}
	defer func() {
		if err := doc.Close(); err != nil {
			e.log.Warn("close document", "backend", name, "path", path, "error", err)
		}
	}()

	n := doc.NumPage()
	var pages []Page
	for i := 1; i <= n; i++ {
		text, err := doc.PageText(i)
		if err != nil {
			e.log.Debug("page text failed", "backend", name, "page", i, "error", err)
			continue
		}
		text = strings.TrimRight(text, " \t\r\n\f")
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, &BackendError{Backend: name, Kind: KindEmptyResult}
	}
	return &Result{Path: path, Backend: name, PageCount: n, Pages: pages}, nil
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &FileNotFoundError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &FileNotFoundError{Path: path, Err: fmt.Errorf("not a regular file")}
	}
	f, err := os.Open(path)
	if err != nil {
		return &FileNotFoundError{Path: path, Err: err}
	}
	f.Close()
	return nil
}

// Describe renders err as a multi-line diagnostic naming each backend tried.
func Describe(err error) string {
	var all *AllBackendsFailedError
	if !errors.As(err, &all) {
		return err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "could not extract text from %s\n", all.Path)
	if len(all.Failures) == 0 {
		b.WriteString("  no backends configured\n")
	}
	for _, f := range all.Failures {
		if f.Err != nil {
			fmt.Fprintf(&b, "  %-12s %s: %v\n", f.Backend, f.Kind, f.Err)
		} else {
			fmt.Fprintf(&b, "  %-12s %s\n", f.Backend, f.Kind)
		}
	}
	return b.String()
}
