package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/paradigm"
	"github.com/jward/paradigm/internal/cluster"
)

var (
	flagK               int
	flagCandidates      []int
	flagSeed            uint64
	flagPerplexity      float64
	flagAnalyzeLanguage string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Cluster the indexed feature vectors",
	Long:  "Runs k-means diagnostics over the candidate cluster counts, fits the final model, and reports centroids, the language-by-cluster cross-tabulation and a 2-D t-SNE embedding.",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&flagK, "k", 0, "cluster count of the final fit (default from config: 3)")
	analyzeCmd.Flags().IntSliceVar(&flagCandidates, "candidates", nil, "candidate cluster counts, ascending (default from config: 2..6)")
	analyzeCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "random seed (default from config: 42)")
	analyzeCmd.Flags().Float64Var(&flagPerplexity, "perplexity", 0, "t-SNE perplexity; must be less than the number of samples")
	analyzeCmd.Flags().StringVar(&flagAnalyzeLanguage, "languages", "", "comma-separated language filter")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return outputError("analyze", err)
	}
	defer engine.Close()

	report, err := engine.Analyze(context.Background(), analysisConfig(cmd))
	if err != nil {
		return outputError("analyze", err)
	}
	return outputResult(CLIResult{Command: "analyze", Results: reportToCLI(report)})
}

// analysisConfig overlays explicitly set analyze flags on the loaded config.
func analysisConfig(cmd *cobra.Command) paradigm.AnalysisConfig {
	a := cfg.Analysis
	ac := paradigm.AnalysisConfig{
		K:          a.K,
		CandidateK: a.CandidateK,
		Params:     a.Params(),
		Languages:  cfg.Extraction.Languages,
	}
	if cmd.Flags().Changed("k") {
		ac.K = flagK
	}
	if cmd.Flags().Changed("candidates") {
		ac.CandidateK = flagCandidates
	}
	if cmd.Flags().Changed("seed") {
		ac.Params.Seed = flagSeed
	}
	if cmd.Flags().Changed("perplexity") {
		ac.Params.Perplexity = flagPerplexity
	}
	if flagAnalyzeLanguage != "" {
		ac.Languages = splitList(flagAnalyzeLanguage)
	}
	return ac
}

// openEngine opens the Engine over an existing database from --db (or the
// default location).
func openEngine() (*paradigm.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'paradigm index' first)", dbPath)
	}
	return paradigm.New(dbPath, paradigm.WithLogger(logger))
}

// silhouetteValue maps an undefined (NaN) silhouette to nil.
func silhouetteValue(s float64) *float64 {
	if !cluster.IsDefined(s) {
		return nil
	}
	return &s
}

func reportToCLI(r *paradigm.Report) CLIReport {
	out := CLIReport{
		RunID:      r.RunID,
		CreatedAt:  r.CreatedAt,
		K:          r.Config.K,
		Seed:       r.Config.Params.Seed,
		Perplexity: r.Config.Params.Perplexity,
		Inertia:    r.Fit.Inertia,
		Silhouette: silhouetteValue(r.Fit.Silhouette),
		Iterations: r.Fit.Iterations,
		Features:   r.Centroids.Features,
		CrossTab: CLICrossTab{
			Languages: r.CrossTab.Languages,
			Counts:    r.CrossTab.Counts,
			RowTotals: r.CrossTab.RowTotals(),
			ColTotals: r.CrossTab.ColTotals(),
			Total:     r.CrossTab.Total(),
		},
	}
	for _, d := range r.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, CLIDiagnostic{
			K:          d.K,
			Inertia:    d.Inertia,
			Silhouette: silhouetteValue(d.Silhouette),
		})
	}
	for _, row := range r.Centroids.Rows {
		out.Centroids = append(out.Centroids, CLICentroid{Cluster: row.Cluster, Size: row.Size, Values: row.Values})
	}
	for _, a := range r.Assignments {
		out.Assignments = append(out.Assignments, CLIAssignment{
			Path:     a.Path,
			Language: a.Language,
			Cluster:  a.Cluster,
			X:        a.Point.X,
			Y:        a.Point.Y,
		})
	}
	return out
}
