package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jward/paradigm"
)

var (
	flagSampleLanguage string
	flagPrefix         string
	flagLimit          int
	flagOffset         int
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List indexed samples",
	Args:  cobra.NoArgs,
	RunE:  runSamples,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Count indexed samples per declared language",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Print the active pattern table",
	Args:  cobra.NoArgs,
	RunE:  runPatterns,
}

func init() {
	samplesCmd.Flags().StringVar(&flagSampleLanguage, "language", "", "only samples declared with this language")
	samplesCmd.Flags().StringVar(&flagPrefix, "prefix", "", "only samples whose path starts with this prefix")
	samplesCmd.Flags().IntVar(&flagLimit, "limit", 50, "pagination limit (max 500)")
	samplesCmd.Flags().IntVar(&flagOffset, "offset", 0, "pagination offset")

	patternsCmd.Flags().StringVar(&flagPatterns, "patterns", "", "pattern table: .yaml/.yml file, .risor script or builtin:<name>")
}

func runSamples(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("samples", err)
	}
	defer engine.Close()

	page, err := engine.Query().Samples(
		paradigm.SampleFilter{Language: flagSampleLanguage, PathPrefix: flagPrefix},
		paradigm.Pagination{Limit: flagLimit, Offset: flagOffset},
	)
	if err != nil {
		return outputError("samples", err)
	}

	items := make([]CLISample, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, CLISample{
			ID:           s.ID,
			Path:         s.Path,
			Language:     s.Language,
			LineCount:    s.LineCount,
			SyntaxErrors: s.SyntaxErrors,
			LastIndexed:  s.LastIndexed,
		})
	}
	total := page.TotalCount
	return outputResult(CLIResult{Command: "samples", Results: items, TotalCount: &total})
}

func runLanguages(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("languages", err)
	}
	defer engine.Close()

	counts, err := engine.Query().LanguageCounts()
	if err != nil {
		return outputError("languages", err)
	}
	items := make([]CLILanguageCount, 0, len(counts))
	for _, c := range counts {
		items = append(items, CLILanguageCount{Language: c.Language, Count: c.Count})
	}
	return outputResult(CLIResult{Command: "languages", Results: items})
}

func runPatterns(cmd *cobra.Command, args []string) error {
	ref := cfg.Extraction.Patterns
	if flagPatterns != "" {
		ref = flagPatterns
	}
	table, err := paradigm.LoadPatternTable(context.Background(), ref, logger)
	if err != nil {
		return outputError("patterns", err)
	}

	items := make([]CLIPatternSet, 0, len(table.Languages()))
	for _, lang := range table.Languages() {
		items = append(items, CLIPatternSet{Language: lang, Patterns: table.Patterns(lang)})
	}
	return outputResult(CLIResult{Command: "patterns", Results: items})
}
