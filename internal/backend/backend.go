// Package backend provides the PDF text-extraction backends and the registry
// that orders them.
package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/pdfextract/internal/extractor"
)

// Backend names accepted by Registry.
const (
	NameLedongthuc = "ledongthuc"
	NameDslipak    = "dslipak"
	NameRSC        = "rsc"
	NamePdftotext  = "pdftotext"
)

// DefaultOrder is the priority order used when none is configured: the
// pure-Go readers first, then the external pdftotext tool.
var DefaultOrder = []string{NameLedongthuc, NameDslipak, NameRSC, NamePdftotext}

// Options configures the backends built by Registry.
type Options struct {
	Order            []string
	PdftotextPath    string
	PdftotextTimeout time.Duration
}

// Registry builds backends in the configured order. Unknown or repeated names
// are an error.
func Registry(opts Options) ([]extractor.Backend, error) {
	order := opts.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	seen := make(map[string]bool, len(order))
	backends := make([]extractor.Backend, 0, len(order))
	for _, raw := range order {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("backend %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case NameLedongthuc:
			backends = append(backends, Ledongthuc{})
		case NameDslipak:
			backends = append(backends, Dslipak{})
		case NameRSC:
			backends = append(backends, RSC{})
		case NamePdftotext:
			backends = append(backends, NewPdftotext(opts.PdftotextPath, opts.PdftotextTimeout))
		default:
			return nil, fmt.Errorf("unknown backend %q (known: %s)", name, strings.Join(DefaultOrder, ", "))
		}
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no backends configured")
	}
	return backends, nil
}

// recovered runs fn, converting a panic into an error. The rsc.io/pdf family
// of readers panics on malformed input instead of returning errors.
func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return fn()
}
