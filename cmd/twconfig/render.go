package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnana997/twconfig/pkg/config"
)

func summary(cfg *config.Config) string {
	return fmt.Sprintf("%s, %s",
		plural(len(cfg.Content), "content pattern"),
		plural(len(cfg.FontSizeNames()), "font-size token"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func printValidations(w io.Writer, results []validation) {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "ok    %s  (%s)\n", r.Path, summary(r.cfg))
			continue
		}
		fmt.Fprintf(w, "FAIL  %s\n", r.Path)
		printProblemLines(w, r.Problems)
	}
}

// printProblems prints a header line followed by one line per problem.
func printProblems(w io.Writer, path string, problems []config.Problem) {
	fmt.Fprintf(w, "%s: %s\n", path, plural(len(problems), "problem"))
	printProblemLines(w, problems)
}

func printProblemLines(w io.Writer, problems []config.Problem) {
	for _, p := range problems {
		var loc string
		if p.Line > 0 {
			loc = fmt.Sprintf("%d:%d  ", p.Line, p.Column)
		}
		fmt.Fprintf(w, "  %s%s: %s\n", loc, p.Kind, p.Message)
	}
}

// printTokens prints tokens as an aligned table.
func printTokens(w io.Writer, tokens []config.Token) {
	header := []string{"NAME", "SIZE", "LINE-HEIGHT", "LETTER-SPACING", "WEIGHT", "SOURCE"}
	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, []string{
			t.Name,
			t.Value.Size,
			dash(t.Value.LineHeight),
			dash(t.Value.LetterSpacing),
			dash(t.Value.FontWeight),
			string(t.Source),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	printRow(w, header, widths)
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, cells []string, widths []int) {
	var b strings.Builder
	for i, cell := range cells {
		if i == len(cells)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
	}
	fmt.Fprintln(w, b.String())
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
