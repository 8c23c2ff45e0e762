package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmbl-labs/formpath/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a flow definition for structural problems",
	Long:  `Parses the flow file and reports missing steps, dangling transitions, unconditional cycles and unreachable steps.`,
	Run: func(cmd *cobra.Command, args []string) {
		def, err := loadFlowFile(cmd, args)
		if err != nil {
			var invalid *domain.InvalidDefinitionError
			if errors.As(err, &invalid) {
				fmt.Println("Flow definition is invalid:")
				for _, defErr := range invalid.Errors {
					fmt.Printf("  - %s\n", defErr.Error())
				}
				os.Exit(1)
			}
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		report := def.Validate()
		for _, warning := range report.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		fmt.Printf("Flow %q is valid (%d steps)\n", def.ID, len(def.Steps))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
