package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/paradigm"
	"github.com/jward/paradigm/internal/features"
	"github.com/jward/paradigm/internal/runtime"
)

var (
	flagExtractLanguage string
	flagExplain         bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Print the feature vector of one source",
	Long:  "Extracts the feature vector of a single file (or stdin) without touching the database. The language defaults to the one implied by the file extension.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&flagExtractLanguage, "language", "", "declared language of the source")
	extractCmd.Flags().BoolVar(&flagExplain, "explain", false, "include per-pattern counts and densities")
	extractCmd.Flags().StringVar(&flagPatterns, "patterns", "", "pattern table: .yaml/.yml file, .risor script or builtin:<name>")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	lang := flagExtractLanguage
	if lang == "" {
		detected, ok := runtime.LanguageForFile(name)
		if !ok {
			return outputError("extract", fmt.Errorf("cannot infer language of %q: pass --language", name))
		}
		lang = detected
	}

	src, err := readSource(name, cmd.InOrStdin())
	if err != nil {
		return outputError("extract", err)
	}

	ref := cfg.Extraction.Patterns
	if flagPatterns != "" {
		ref = flagPatterns
	}
	table, err := paradigm.LoadPatternTable(ctx, ref, logger)
	if err != nil {
		return outputError("extract", err)
	}
	ex := features.NewExtractor(table, features.DefaultKeywordFamilies())

	code := string(src)
	result := CLIExtraction{
		Source:    name,
		LineCount: features.LineCount(code),
		Features:  ex.Extract(code, lang),
	}
	if flagExplain {
		result.Patterns = ex.PatternCounts(code, lang)
	}
	return outputResult(CLIResult{Command: "extract", Results: result})
}

// readSource reads name, or stdin when name is "-".
func readSource(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
