package backend

import (
	"fmt"
	"os"

	"github.com/dgallion1/pdfextract/internal/extractor"
	pdflib "github.com/ledongthuc/pdf"
)

// Ledongthuc extracts text with github.com/ledongthuc/pdf.
type Ledongthuc struct{}

func (Ledongthuc) Name() string { return NameLedongthuc }
func (Ledongthuc) Available() error { return nil }

func (Ledongthuc) Open(path string) (extractor.Document, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}

	var (
		reader *pdflib.Reader
		pages  int
	)
	err = recovered(func() error {
		var err error
		reader, err = pdflib.NewReader(f, size)
		if err != nil {
			return err
		}
		pages = reader.NumPage()
		return nil
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &ledongthucDoc{f: f, r: reader, pages: pages}, nil
}

type ledongthucDoc struct {
	f     *os.File
	r     *pdflib.Reader
	pages int
}

func (d *ledongthucDoc) NumPage() int { return d.pages }

func (d *ledongthucDoc) PageText(n int) (string, error) {
	var text string
	err := recovered(func() error {
		page := d.r.Page(n)
		if page.V.IsNull() {
			return nil
		}
		// Font resource names are local to a page, so let the library
		// resolve them from this page's own resources.
		var err error
		text, err = page.GetPlainText(nil)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return text, nil
}

func (d *ledongthucDoc) Close() error { return d.f.Close() }
