package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"subsweep/internal/scan"
)

// progressLine redraws a single status line on interactive terminals and stays
// silent otherwise.
type progressLine struct {
	out     io.Writer
	enabled bool
	last    string
	width   int
}

func newProgressLine(out io.Writer) *progressLine {
	return &progressLine{out: out, enabled: isTerminal(out)}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressLine) callback() scan.ProgressFunc {
	if !p.enabled {
		return nil
	}
	return func(percent float64) {
		line := fmt.Sprintf("Scanning library... %5.1f%%", percent)
		if line == p.last {
			return
		}
		p.last = line
		pad := ""
		if p.width > len(line) {
			pad = strings.Repeat(" ", p.width-len(line))
		}
		p.width = len(line)
		fmt.Fprintf(p.out, "\r%s%s", line, pad)
	}
}

// done terminates the status line so following output starts clean.
func (p *progressLine) done() {
	if p.enabled && p.last != "" {
		fmt.Fprintln(p.out)
	}
}
