package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/pdfextract/internal/pdftest"
)

func TestFile_Missing(t *testing.T) {
	info, err := File(filepath.Join(t.TempDir(), "missing.pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Exists {
		t.Error("expected Exists=false for missing file")
	}
}

func TestFile_CountsPages(t *testing.T) {
	path := pdftest.Write(t, "one", "two", "three")
	info, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Exists {
		t.Fatal("expected Exists=true")
	}
	st, _ := os.Stat(path)
	if info.Size != st.Size() {
		t.Errorf("expected size %d, got %d", st.Size(), info.Size)
	}
	if info.Err != nil {
		t.Fatalf("unexpected page count error: %v", info.Err)
	}
	if info.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", info.Pages)
	}
}

func TestFile_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Exists || info.Size != int64(len("plain text")) {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Err == nil {
		t.Error("expected page count error for non-PDF")
	}
}
