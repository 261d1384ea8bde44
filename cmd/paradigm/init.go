package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/paradigm/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .paradigm/config.yaml at the repository root",
	Long:  "Init writes the default configuration to .paradigm/config.yaml under the repository root. An existing file is left untouched.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return outputError("init", fmt.Errorf("getting cwd: %w", err))
	}
	path, created, err := config.NewLoader(logger).EnsureProjectConfig(findRepoRoot(cwd))
	if err != nil {
		return outputError("init", err)
	}
	return outputResult(CLIResult{Command: "init", Results: CLIInit{Path: path, Created: created}})
}
