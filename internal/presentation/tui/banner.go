package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the quizgraph banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"              _                              _     ", "#818cf8"},
		{"   __ _ _   _(_)___ __ _ _ __ __ _ _ __ | |__  ", "#a78bfa"},
		{"  / _` | | | | |_  // _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
		{" | (_| | |_| | |/ /| (_| | | | (_| | |_) | | | |", "#e879f9"},
		{"  \\__, |\\__,_|_/___|\\__, |_|  \\__,_| .__/|_| |_|", "#f472b6"},
		{"     |_|            |___/          |_|          ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
