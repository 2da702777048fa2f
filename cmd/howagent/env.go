package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/yushaw/howagentworks/internal/printer"
)

// pdfPrinter is the part of printer.Printer the pdf command needs.
type pdfPrinter interface {
	ToPDF(ctx context.Context, html string, opts *printer.Options) ([]byte, error)
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment lookup and the PDF printer.
type Environment struct {
	Now        func() time.Time
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	LookupEnv  func(string) (string, bool)
	NewPrinter func(timeout time.Duration, rootDir string, logger *slog.Logger) pdfPrinter
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		NewPrinter: func(timeout time.Duration, rootDir string, logger *slog.Logger) pdfPrinter {
			return printer.New(timeout, printer.WithRootDir(rootDir), printer.WithLogger(logger))
		},
	}
}

// newLogger returns the command logger. Info is the default level;
// --verbose lowers it to debug and --quiet raises it to errors only.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
