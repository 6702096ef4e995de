package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dgallion1/pdfextract/internal/extractor"
)

const defaultPdftotextTimeout = 60 * time.Second

// Pdftotext shells out to poppler's pdftotext. It is only available when the
// binary can be found.
type Pdftotext struct {
	binPath string
	timeout time.Duration
}

// NewPdftotext creates a Pdftotext backend. If binPath is empty, "pdftotext"
// is looked up on PATH.
func NewPdftotext(binPath string, timeout time.Duration) *Pdftotext {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if timeout <= 0 {
		timeout = defaultPdftotextTimeout
	}
	return &Pdftotext{binPath: binPath, timeout: timeout}
}

func (p *Pdftotext) Name() string { return NamePdftotext }

func (p *Pdftotext) Available() error {
	if _, err := exec.LookPath(p.binPath); err != nil {
		return fmt.Errorf("pdftotext not found: %w", err)
	}
	return nil
}

// Open runs pdftotext over the whole file. The process has exited by the time
// Open returns, so the document holds no file handle.
func (p *Pdftotext) Open(path string) (extractor.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pdftotext timed out after %s", p.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("pdftotext: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return &pdftotextDoc{pages: splitPages(stdout.String())}, nil
}

type pdftotextDoc struct {
	pages []string
}

func (d *pdftotextDoc) NumPage() int { return len(d.pages) }

func (d *pdftotextDoc) PageText(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

func (d *pdftotextDoc) Close() error { return nil }

// splitPages splits pdftotext output on form feeds. pdftotext terminates every
// page, including the last, with one.
func splitPages(text string) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	if pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
