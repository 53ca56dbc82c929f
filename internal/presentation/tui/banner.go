package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`   ____                      ____                            `,
	`  / ___|_ __ ___  ___ _ __  / ___|  ___ _ __ ___  ___ _ __   `,
	` | |  _| '__/ _ \/ _ \ '_ \ \___ \ / __| '__/ _ \/ _ \ '_ \  `,
	` | |_| | | |  __/  __/ | | | ___) | (__| | |  __/  __/ | | | `,
	`  \____|_|  \___|\___|_| |_||____/ \___|_|  \___|\___|_| |_| `,
}

// Phosphor greens, dark to bright.
var bannerColors = []string{"#14532d", "#166534", "#15803d", "#16a34a", "#22c55e"}

// PrintBanner writes the banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String("  terminal host simulator and workflow runner "+version).Faint())
	fmt.Fprintln(w)
}
