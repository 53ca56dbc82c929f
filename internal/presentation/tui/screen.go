package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/screen"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// DumpScreen writes the buffer inside a frame with row numbers. Unprotected
// field cells are underlined and the error line is red when w supports color.
func DumpScreen(w io.Writer, buf *screen.Buffer) {
	out := termenv.NewOutput(w)
	input := inputCells(buf)
	border := "    +" + strings.Repeat("-", domain.Cols) + "+"

	fmt.Fprintln(w, border)
	for r, line := range buf.Lines() {
		row := r + 1
		var sb strings.Builder
		runes := []rune(line)
		for c := 0; c < len(runes); {
			addr := domain.Address(row, c+1)
			end := c
			for end < len(runes) && input[domain.Address(row, end+1)] == input[addr] {
				end++
			}
			seg := out.String(string(runes[c:end]))
			switch {
			case row == domain.ErrorRow:
				seg = seg.Foreground(out.Color("#ef4444"))
			case input[addr]:
				seg = seg.Underline()
			default:
				seg = seg.Foreground(out.Color("#22c55e"))
			}
			sb.WriteString(seg.String())
			c = end
		}
		fmt.Fprintf(w, " %2d |%s|\n", row, sb.String())
	}
	fmt.Fprintln(w, border)
	cur := buf.CursorPosition()
	fmt.Fprintf(w, "    cursor %d,%d\n", cur.Row, cur.Col)
}

func inputCells(buf *screen.Buffer) map[int]bool {
	cells := make(map[int]bool)
	for _, f := range buf.Fields() {
		if f.Protected() {
			continue
		}
		for i := 0; i < f.Length; i++ {
			cells[(f.DataAddress()+i)%domain.BufferSize] = true
		}
	}
	return cells
}
