package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatSamplesText formats CLISample results as aligned columns.
func formatSamplesText(w io.Writer, samples []CLISample) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tLANGUAGE\tLINES\tSYNTAX_ERRORS")
	for _, s := range samples {
		syntax := "-"
		if s.SyntaxErrors >= 0 {
			syntax = fmt.Sprint(s.SyntaxErrors)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.ID, s.Path, s.Language, s.LineCount, syntax)
	}
	tw.Flush()
}

// formatLanguagesText formats CLILanguageCount results as aligned columns.
func formatLanguagesText(w io.Writer, counts []CLILanguageCount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tSAMPLES")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Language, c.Count)
	}
	tw.Flush()
}

func formatPatternsText(w io.Writer, sets []CLIPatternSet) {
	for _, s := range sets {
		quoted := make([]string, len(s.Patterns))
		for i, p := range s.Patterns {
			quoted[i] = fmt.Sprintf("%q", p)
		}
		fmt.Fprintf(w, "%s: %s\n", s.Language, strings.Join(quoted, ", "))
	}
}

func formatIndexText(w io.Writer, s CLIIndexSummary) {
	fmt.Fprintf(w, "Indexed %s in %dms\n", s.Root, s.ElapsedMS)
	fmt.Fprintf(w, "Database: %s\n", s.Database)
	if s.Reextracted {
		fmt.Fprintln(w, "Pattern table changed: stored samples re-extracted")
	}
	fmt.Fprintf(w, "Samples: %d\n", s.Samples)
	if len(s.Languages) > 0 {
		fmt.Fprintln(w)
		formatLanguagesText(w, s.Languages)
	}
}

func formatExtractionText(w io.Writer, e CLIExtraction) {
	v := e.Features
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "source\t%s\n", e.Source)
	fmt.Fprintf(tw, "language\t%s\n", v.Language)
	fmt.Fprintf(tw, "lines\t%d\n", e.LineCount)
	fmt.Fprintf(tw, "has_threads\t%d\n", v.HasThreads)
	fmt.Fprintf(tw, "has_locks\t%d\n", v.HasLocks)
	fmt.Fprintf(tw, "has_channels\t%d\n", v.HasChannels)
	fmt.Fprintf(tw, "has_actors\t%d\n", v.HasActors)
	fmt.Fprintf(tw, "has_async\t%d\n", v.HasAsync)
	fmt.Fprintf(tw, "lock_density\t%.4f\n", v.LockDensity)
	fmt.Fprintf(tw, "channel_density\t%.4f\n", v.ChannelDensity)
	fmt.Fprintf(tw, "actor_density\t%.4f\n", v.ActorDensity)
	fmt.Fprintf(tw, "async_density\t%.4f\n", v.AsyncDensity)
	fmt.Fprintf(tw, "concurrency_score\t%.3f\n", v.ConcurrencyScore)
	tw.Flush()

	if len(e.Patterns) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATTERN\tCOUNT\tDENSITY")
		for _, p := range e.Patterns {
			fmt.Fprintf(tw, "%q\t%d\t%.4f\n", p.Pattern, p.Count, p.Density)
		}
		tw.Flush()
	}
}

// formatSilhouette renders an optional silhouette, "n/a" when undefined.
func formatSilhouette(s *float64) string {
	if s == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *s)
}

// formatReportText formats CLIReport as readable text.
func formatReportText(w io.Writer, r CLIReport) {
	fmt.Fprintf(w, "Run %s (k=%d, seed=%d, perplexity=%g)\n", r.RunID, r.K, r.Seed, r.Perplexity)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Cluster-count diagnostics:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  K\tINERTIA\tSILHOUETTE")
	for _, d := range r.Diagnostics {
		fmt.Fprintf(tw, "  %d\t%.4f\t%s\n", d.K, d.Inertia, formatSilhouette(d.Silhouette))
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Final fit: inertia %.4f, silhouette %s, %d iterations\n",
		r.Inertia, formatSilhouette(r.Silhouette), r.Iterations)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Centroids:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  CLUSTER\tSIZE\t%s\n", strings.ToUpper(strings.Join(r.Features, "\t")))
	for _, c := range r.Centroids {
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(tw, "  %d\t%d\t%s\n", c.Cluster, c.Size, strings.Join(vals, "\t"))
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Language x cluster:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"  LANGUAGE"}
	for c := range len(r.CrossTab.ColTotals) {
		header = append(header, fmt.Sprint(c))
	}
	header = append(header, "TOTAL")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, lang := range r.CrossTab.Languages {
		row := []string{"  " + lang}
		for _, n := range r.CrossTab.Counts[i] {
			row = append(row, fmt.Sprint(n))
		}
		row = append(row, fmt.Sprint(r.CrossTab.RowTotals[i]))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	totals := []string{"  TOTAL"}
	for _, n := range r.CrossTab.ColTotals {
		totals = append(totals, fmt.Sprint(n))
	}
	totals = append(totals, fmt.Sprint(r.CrossTab.Total))
	fmt.Fprintln(tw, strings.Join(totals, "\t"))
	tw.Flush()
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLISample:
		formatSamplesText(w, v)
	case []CLILanguageCount:
		formatLanguagesText(w, v)
	case []CLIPatternSet:
		formatPatternsText(w, v)
	case CLIIndexSummary:
		formatIndexText(w, v)
	case CLIExtraction:
		formatExtractionText(w, v)
	case CLIReport:
		formatReportText(w, v)
	case CLIInit:
		if v.Created {
			fmt.Fprintf(w, "Created %s\n", v.Path)
		} else {
			fmt.Fprintf(w, "%s already exists\n", v.Path)
		}
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		if shown, ok := result.Results.([]CLISample); ok && len(shown) < *result.TotalCount {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", len(shown), *result.TotalCount)
		}
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
