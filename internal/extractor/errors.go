package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendOpenFailed  = errors.New("backend open failed")
	ErrBackendEmptyResult = errors.New("backend returned no text")
	ErrAllBackendsFailed  = errors.New("all backends failed")
)

// Kind classifies a single backend failure.
type Kind int

const (
	KindUnavailable Kind = iota + 1
	KindOpenFailed
	KindEmptyResult
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindOpenFailed:
		return "open failed"
	case KindEmptyResult:
		return "empty result"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnavailable:
		return ErrBackendUnavailable
	case KindOpenFailed:
		return ErrBackendOpenFailed
	case KindEmptyResult:
		return ErrBackendEmptyResult
	}
	return nil
}

// FileNotFoundError is returned when the input path does not name a readable file.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: file not found", e.Path)
}

func (e *FileNotFoundError) Is(target error) bool { return target == ErrFileNotFound }

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// BackendError records why one backend did not produce text.
type BackendError struct {
	Backend string
	Kind    Kind
	Err     error // underlying cause, nil for KindEmptyResult
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
}

func (e *BackendError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *BackendError) Unwrap() error { return e.Err }

// AllBackendsFailedError aggregates every backend failure in priority order.
type AllBackendsFailedError struct {
	Path     string
	Failures []*BackendError
}

func (e *AllBackendsFailedError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("extract %s: %v: no backends configured", e.Path, ErrAllBackendsFailed)
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("extract %s: %v: %s", e.Path, ErrAllBackendsFailed, strings.Join(parts, "; "))
}

func (e *AllBackendsFailedError) Is(target error) bool { return target == ErrAllBackendsFailed }

// Unwrap exposes the per-backend failures so errors.Is can match their kinds.
func (e *AllBackendsFailedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
