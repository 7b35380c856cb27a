package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _             __ _               ", "#34d399"},
	{"  ___| |_ ___ _ __ / _| | _____      __", "#2dd4bf"},
	{" / __| __/ _ \\ '_ \\ |_| |/ _ \\ \\ /\\ / /", "#22d3ee"},
	{" \\__ \\ ||  __/ |_) |  _| | (_) \\ V  V / ", "#38bdf8"},
	{" |___/\\__\\___| .__/|_| |_|\\___/ \\_/\\_/  ", "#60a5fa"},
	{"             |_|                       ", "#818cf8"},
}

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}

// Success formats msg as a green check line.
func Success(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("✔ " + msg).Foreground(p.Color("#22c55e")).String()
}

// Failure formats msg as a bold red cross line.
func Failure(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("✘ " + msg).Foreground(p.Color("#ef4444")).Bold().String()
}
