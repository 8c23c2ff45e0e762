package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmbl-labs/formpath/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the flow's steps and transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		def, err := loadFlowFile(cmd, args)
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.Mermaid(def, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
