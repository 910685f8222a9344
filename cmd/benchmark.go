package cmd

import (
	"fmt"
	"strings"
	"time"

	"keygrid/internal/benchmark"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run benchmark tests against a server",
	Long: `Run benchmark tests similar to redis-benchmark.

Examples:
  keygrid benchmark --requests 10000 --concurrency 10
  keygrid benchmark --commands SET,GET,INCR --requests 5000
  keygrid benchmark --pipeline 10 --requests 10000
  keygrid benchmark --latency-hist --requests 1000`,
	SilenceUsage: true,
	PreRunE:      bindFlags,
	RunE: func(c *cobra.Command, _ []string) error {
		cfg := benchmarkConfig()
		out := c.OutOrStdout()
		if !cfg.Quiet && !cfg.CSV {
			fmt.Fprintf(out, "Benchmark\n=========\n")
			fmt.Fprintf(out, "Host: %s:%d\n", cfg.Host, cfg.Port)
			fmt.Fprintf(out, "Requests: %d\n", cfg.Requests)
			fmt.Fprintf(out, "Concurrency: %d\n", cfg.Concurrency)
			fmt.Fprintf(out, "Pipeline: %d\n", cfg.Pipeline)
			fmt.Fprintf(out, "Commands: %s\n", strings.Join(cfg.Commands, ", "))
			fmt.Fprintf(out, "Data size: %d bytes\n", cfg.DataSize)
			fmt.Fprintf(out, "Keyspace: %d\n\n", cfg.KeySpace)
		}
		results, err := benchmark.Run(c.Context(), cfg)
		if err != nil {
			return err
		}
		benchmark.Print(out, results, cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	f := benchmarkCmd.Flags()
	f.String("host", "127.0.0.1", "Server host")
	f.IntP("port", "p", 6380, "Server port")
	f.Duration("timeout", 5*time.Second, "Connection timeout")

	f.Int("requests", 10000, "Total number of requests")
	f.IntP("concurrency", "c", 50, "Number of parallel connections")
	f.IntP("pipeline", "P", 1, "Pipeline requests")

	f.String("commands", strings.Join(benchmark.DefaultCommands, ","), "Comma-separated list of commands to test")
	f.Int("data-size", 3, "Size of generated values in bytes")
	f.Int("keyspace", 10000, "Number of distinct keys per command")
	f.Bool("random-data", false, "Use random data for values")

	f.BoolP("quiet", "q", false, "Quiet mode (one line per command)")
	f.Bool("csv", false, "Output in CSV format")
	f.Bool("latency-hist", false, "Show latency histogram")
}

func benchmarkConfig() benchmark.Config {
	var commands []string
	for _, c := range strings.Split(viper.GetString("commands"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			commands = append(commands, c)
		}
	}
	return benchmark.Config{
		Host:        viper.GetString("host"),
		Port:        viper.GetInt("port"),
		Timeout:     viper.GetDuration("timeout"),
		Requests:    viper.GetInt("requests"),
		Concurrency: viper.GetInt("concurrency"),
		Pipeline:    viper.GetInt("pipeline"),
		Commands:    commands,
		DataSize:    viper.GetInt("data-size"),
		KeySpace:    viper.GetInt("keyspace"),
		RandomData:  viper.GetBool("random-data"),
		Quiet:       viper.GetBool("quiet"),
		CSV:         viper.GetBool("csv"),
		LatencyHist: viper.GetBool("latency-hist"),
	}
}
