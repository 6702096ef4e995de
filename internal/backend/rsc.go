package backend

import (
	"fmt"
	"os"

	"github.com/dgallion1/pdfextract/internal/extractor"
	rscpdf "rsc.io/pdf"
)

// RSC extracts text with rsc.io/pdf by reassembling content-stream runs.
type RSC struct{}

func (RSC) Name() string { return NameRSC }
func (RSC) Available() error { return nil }

func (RSC) Open(path string) (extractor.Document, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}

	var (
		reader *rscpdf.Reader
		pages  int
	)
	err = recovered(func() error {
		var err error
		reader, err = rscpdf.NewReader(f, size)
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
	return &rscDoc{f: f, r: reader, pages: pages}, nil
}

type rscDoc struct {
	f     *os.File
	r     *rscpdf.Reader
	pages int
}

func (d *rscDoc) NumPage() int { return d.pages }

func (d *rscDoc) PageText(n int) (string, error) {
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

func (d *rscDoc) Close() error { return d.f.Close() }

// openSized opens path and reports its size, as the ReaderAt-based readers need.
func openSized(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat file: %w", err)
	}
	return f, info.Size(), nil
}
