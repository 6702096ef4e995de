package backend

import (
	"fmt"
	"os"

	"github.com/dgallion1/pdfextract/internal/extractor"
	dspdf "github.com/dslipak/pdf"
)

// Dslipak extracts text with github.com/dslipak/pdf by reassembling content-stream runs.
type Dslipak struct{}

func (Dslipak) Name() string { return NameDslipak }
func (Dslipak) Available() error { return nil }

func (Dslipak) Open(path string) (extractor.Document, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}

	var (
		reader *dspdf.Reader
		pages  int
	)
	err = recovered(func() error {
		var err error
		reader, err = dspdf.NewReader(f, size)
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
	return &dslipakDoc{f: f, r: reader, pages: pages}, nil
}

type dslipakDoc struct {
	f     *os.File
	r     *dspdf.Reader
	pages int
}

func (d *dslipakDoc) NumPage() int { return d.pages }

func (d *dslipakDoc) PageText(n int) (string, error) {
	var runs []run
	err := recovered(func() error {
		page := d.r.Page(n)
		if page.V.IsNull() {
			return nil
		}
		for _, t := range page.Content().Text {
			runs = append(runs, run{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return joinRuns(runs), nil
}

func (d *dslipakDoc) Close() error { return d.f.Close() }
