package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wn7ant/eve-value/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eve-value version %s\n", version.Version)
	},
}
