package cmd

import (
	"time"

	"keygrid/internal/cli"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cliCmd = &cobra.Command{
	Use:   "cli [command [arg ...]]",
	Short: "Interactive command-line client",
	Long: `Interactive command-line client similar to redis-cli.

Examples:
  keygrid cli
  keygrid cli --host 127.0.0.1 --port 6380
  keygrid cli LPUSH jobs a b c
  keygrid cli --eval "BLPOP jobs 5"
  keygrid cli --file commands.txt`,
	SilenceUsage: true,
	PreRunE:      bindFlags,
	RunE: func(c *cobra.Command, args []string) error {
		return cli.Run(c.Context(), cliConfig(), args)
	},
}

func init() {
	rootCmd.AddCommand(cliCmd)

	f := cliCmd.Flags()
	f.String("host", "127.0.0.1", "Server host")
	f.IntP("port", "p", 6380, "Server port")
	f.Duration("timeout", 5*time.Second, "Connection timeout")
	f.Bool("raw", false, "Use raw formatting for replies")
	f.String("eval", "", "Send specified command")
	f.String("file", "", "Execute commands from file")
	f.Bool("pipe", false, "Read commands from stdin")
}

func cliConfig() cli.Config {
	return cli.Config{
		Host:    viper.GetString("host"),
		Port:    viper.GetInt("port"),
		Timeout: viper.GetDuration("timeout"),
		Raw:     viper.GetBool("raw"),
		Eval:    viper.GetString("eval"),
		File:    viper.GetString("file"),
		Pipe:    viper.GetBool("pipe"),
	}
}
