package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/pdfextract/internal/api"
	"github.com/dgallion1/pdfextract/internal/backend"
	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/extractor"
	"github.com/dgallion1/pdfextract/internal/inspect"
)

const usage = `usage:
  pdfextract [-backends list] [-format text|json] [-pdftotext path] [-v] <file.pdf>
  pdfextract inspect <file.pdf>
  pdfextract serve [-port port]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	if len(args) > 0 {
		switch args[0] {
		case "inspect":
			return runInspect(args[1:], stdout, stderr)
		case "serve":
			return runServe(cfg, args[1:], stderr)
		}
	}
	return runExtract(cfg, args, stdout, stderr)
}

func runExtract(cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pdfextract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	backends := fs.String("backends", strings.Join(cfg.Backends, ","), "comma-separated backends in priority order")
	format := fs.String("format", "text", "output format: text or json")
	pdftotext := fs.String("pdftotext", cfg.PdftotextPath, "path to the pdftotext binary")
	verbose := fs.Bool("v", false, "log each backend attempt")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	cfg.PdftotextPath = *pdftotext
	cfg.Backends = splitList(*backends)
	switch {
	case *verbose:
		cfg.LogLevel = slog.LevelDebug
	case os.Getenv("LOG_LEVEL") == "":
		// Keep stderr quiet unless something goes wrong.
		cfg.LogLevel = slog.LevelWarn
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}

	ex, err := newExtractor(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	res, err := ex.Extract(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, strings.TrimRight(extractor.Describe(err), "\n"))
		return 1
	}

	fmt.Fprintf(stderr, "extracted %d of %d pages with %s\n", len(res.Pages), res.PageCount, res.Backend)

	if *format == "json" {
		err = extractor.FormatJSON(stdout, res)
	} else {
		err = extractor.Format(stdout, res.Pages)
	}
	if err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runInspect(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	info, err := inspect.File(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "path: %s\n", info.Path)
	fmt.Fprintf(stdout, "exists: %t\n", info.Exists)
	if !info.Exists {
		return 1
	}
	fmt.Fprintf(stdout, "size: %d bytes\n", info.Size)
	if info.Err != nil {
		fmt.Fprintf(stdout, "pages: unknown (%v)\n", info.Err)
		return 1
	}
	fmt.Fprintf(stdout, "pages: %d\n", info.Pages)
	return 0
}

func runServe(cfg config.Config, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.String("port", cfg.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg.Port = *port

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}
	log := cfg.Logger()

	ex, err := newExtractor(cfg)
	if err != nil {
		log.Error("invalid backend configuration", "error", err)
		return 2
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(ex, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting pdfextract", "port", cfg.Port, "backends", ex.Backends())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return 1
	}
	return 0
}

// newExtractor assembles the backend registry once at startup.
func newExtractor(cfg config.Config) (*extractor.Extractor, error) {
	backends, err := backend.Registry(backend.Options{
		Order:            cfg.Backends,
		PdftotextPath:    cfg.PdftotextPath,
		PdftotextTimeout: cfg.PdftotextTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("configure backends: %w", err)
	}
	return extractor.New(cfg.Logger(), backends...), nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
