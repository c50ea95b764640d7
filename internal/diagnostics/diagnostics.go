// Package diagnostics renders check results for the terminal. Output
// is colored when it goes to an interactive terminal and plain
// everywhere else, so logs and pipes stay clean.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funtype/internal/config"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

// Reporter writes check results to a destination, coloring them when
// the destination supports it.
type Reporter struct {
	out   io.Writer
	color bool
}

// Option adjusts a Reporter.
type Option func(*Reporter)

// WithColor overrides terminal detection.
func WithColor(on bool) Option {
	return func(r *Reporter) { r.color = on }
}

// NewReporter creates a Reporter for out. Color is enabled only when
// out is an interactive terminal, NO_COLOR is unset and the terminal
// is not dumb.
func NewReporter(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{out: out, color: detectColor(out)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func detectColor(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv(config.EnvNoColor) != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Pass reports one passing check.
func (r *Reporter) Pass(subject string) {
	fmt.Fprintf(r.out, "%s   %s\n", r.paint(ansiGreen, "ok"), subject)
}

// Fail reports one failing check with its reason.
func (r *Reporter) Fail(subject string, err error) {
	fmt.Fprintf(r.out, "%s %s: %s\n", r.paint(ansiRed, "FAIL"), subject, err)
}

// Shape reports an inferred or derived type for a subject.
func (r *Reporter) Shape(subject, typ string) {
	fmt.Fprintf(r.out, "%s: %s\n", subject, r.paint(ansiCyan, typ))
}

// Summary reports the final tally of a run.
func (r *Reporter) Summary(checked, failed int) {
	if failed == 0 {
		fmt.Fprintln(r.out, r.paint(ansiGreen, fmt.Sprintf("%d checked, all ok", checked)))
		return
	}
	fmt.Fprintln(r.out, r.paint(ansiRed, fmt.Sprintf("%d checked, %d failed", checked, failed)))
}

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}
