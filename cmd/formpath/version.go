package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nmbl-labs/formpath"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of formpath",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("formpath version %s\n", strings.TrimSpace(formpath.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
