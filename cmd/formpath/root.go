package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/flowfile"
)

var rootCmd = &cobra.Command{
	Use:   "formpath",
	Short: "formpath drives declarative multi-step form flows",
	Long:  `formpath loads flow definitions from YAML files and lets you validate them, render them as diagrams, walk them interactively, or serve them over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "flow.yaml", "Flow definition file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

// loadFlowFile loads the flow named by the --file flag, or the first
// positional argument when given.
func loadFlowFile(cmd *cobra.Command, args []string) (*domain.FlowDefinition, error) {
	path, _ := cmd.Flags().GetString("file")
	if !cmd.Flags().Changed("file") && len(args) > 0 {
		path = args[0]
	}
	// The CLI cannot register Go transition functions, so flow files
	// driven from here must use static transitions.
	return flowfile.Load(path, nil)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}
