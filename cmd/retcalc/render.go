package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/utkarsh5026/parmap/returns"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func printSectionHeader(w io.Writer, title string, descriptions ...string) {
	fmt.Fprintln(w)
	bold.Fprintln(w, "═══════════════════════════════════════════════════════════")
	bold.Fprintln(w, title)
	bold.Fprintln(w, "═══════════════════════════════════════════════════════════")
	for _, desc := range descriptions {
		fmt.Fprintln(w, desc)
	}
	fmt.Fprintln(w)
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func renderMonthly(w io.Writer, keyDay int, rows []returns.MonthlyReturn, limit int) error {
	printSectionHeader(w, fmt.Sprintf("MONTHLY RETURNS (key day %d)", keyDay),
		"Compounded daily returns per symbol between consecutive key days")

	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Start", "End", "Expected End", "Return")
	for _, r := range shown {
		_ = table.Append(r.Symbol, date(r.Start), date(r.End), date(r.EndExpected), percent(r.Ret))
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	green.Fprintf(w, "✅ %d monthly returns, %d shown\n", len(rows), len(shown))
	return nil
}

func renderForward(w io.Writer, m, n int, stats []forwardStat) error {
	printSectionHeader(w, fmt.Sprintf("FORWARD RETURNS (%d to %d rows ahead)", m, n),
		"Per symbol summary of the compounded forward return of every row",
		"  • Defined: rows with a complete forward window")

	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Rows", "Defined", "Mean", "Min", "Max")
	for _, s := range stats {
		_ = table.Append(
			s.Symbol,
			fmt.Sprint(s.Rows),
			fmt.Sprint(s.Defined),
			percent(s.Mean),
			percent(s.Min),
			percent(s.Max),
		)
	}
	return table.Render()
}

func renderBench(w io.Writer, results []benchResult) error {
	printSectionHeader(w, "EXECUTOR COMPARISON",
		"Best wall time of forward returns per executor kind and scheduling strategy")

	var fastest time.Duration
	for _, r := range results {
		if r.Rank == 1 {
			fastest = r.Best
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "Executor", "Strategy", "Best", "vs Fastest")
	var failed []benchResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		_ = table.Append(
			fmt.Sprint(r.Rank),
			r.Kind.String(),
			r.Strategy.String(),
			r.Best.Round(time.Microsecond).String(),
			vsFastest(r.Best, fastest),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(failed) > 0 {
		fmt.Fprintln(w)
		red.Fprintln(w, "⚠️  Failed combinations:")
		for _, r := range failed {
			red.Fprintf(w, "  • %s/%s: %v\n", r.Kind, r.Strategy, r.Err)
		}
	}
	return nil
}

func vsFastest(d, fastest time.Duration) string {
	if fastest <= 0 || d == fastest {
		return "fastest"
	}
	return fmt.Sprintf("%.2fx slower", float64(d)/float64(fastest))
}
