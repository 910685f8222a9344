package cmd

import (
	"fmt"
	"runtime"

	"keygrid/internal/stats"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionTemplate = `
Version: %s
Commit: %s
Build date: %s
GOOS: %s-%s
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprintf(c.OutOrStdout(), versionTemplate,
			stats.Version,
			stats.Commit,
			stats.BuildDate,
			runtime.GOOS,
			runtime.GOARCH,
		)
	},
}
