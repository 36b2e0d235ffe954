package progress

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Bar renders hashing progress as a terminal progress bar
type Bar struct {
	out     io.Writer
	printer *pterm.ProgressbarPrinter
}

// NewBar returns a progress bar writing to out
func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

// Start shows the bar sized for total files
func (b *Bar) Start(total int) {
	if total == 0 {
		return
	}
	printer, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Hashing files").
		WithWriter(b.out).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return
	}
	b.printer = printer
}

// Advance counts one hashed file
func (b *Bar) Advance(path string) {
	if b.printer == nil {
		return
	}
	b.printer.UpdateTitle(path)
	b.printer.Increment()
}

// Finish removes the bar
func (b *Bar) Finish() {
	if b.printer == nil {
		return
	}
	_, _ = b.printer.Stop()
	b.printer = nil
}

// Nop discards progress
type Nop struct{}

func (Nop) Start(int)      {}
func (Nop) Advance(string) {}
func (Nop) Finish()        {}

// Sink receives hashing progress
type Sink interface {
	Start(total int)
	Advance(path string)
	Finish()
}

// ForTerminal picks the bar when f is an interactive terminal and quiet is
// off, and Nop otherwise
func ForTerminal(f *os.File, quiet bool) Sink {
	if quiet || !isTerminal(f) {
		return Nop{}
	}
	return NewBar(f)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
