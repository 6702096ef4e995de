// Package inspect reports basic facts about a PDF file without extracting text.
package inspect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	model.ConfigPath = "disable"
}

// Info describes a file on disk.
type Info struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Size   int64  `json:"size"`
	Pages  int    `json:"pages"`
	Err    error  `json:"-"` // why Pages could not be determined
}

// File stats path and counts its pages with pdfcpu. A missing file is
// reported through Info.Exists; a file pdfcpu cannot read is reported through
// Info.Err. Only unexpected stat failures are returned as errors.
func File(path string) (Info, error) {
	info := Info{Path: path}

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}
		return info, fmt.Errorf("stat %s: %w", path, err)
	}
	info.Exists = true
	info.Size = st.Size()
	if !st.Mode().IsRegular() {
		info.Err = fmt.Errorf("not a regular file")
		return info, nil
	}

	info.Pages, info.Err = pageCount(path)
	return info, nil
}

func pageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err = api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}
