package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"keygrid/internal/blocking"
	"keygrid/internal/cmd"
	"keygrid/internal/engine"
	"keygrid/internal/logger"
	"keygrid/internal/persistence"
	"keygrid/internal/server"
	"keygrid/internal/stats"
	"keygrid/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultReadBuffer = 256 * 1024
const defaultWriteBuffer = 64 * 1024

var rootCmd = &cobra.Command{
	Use:   "keygrid",
	Short: "An in-memory typed data server speaking RESP",
	Long: `An in-memory data server with strings, lists, hashes, sets, sorted sets and
bloom filters, blocking list pops and optional snapshots to disk.

Every flag can also be set through the environment as KEYGRID_<FLAG>, for
example KEYGRID_SAVE_INTERVAL=60s. .env and .env.local are read on startup.`,
	SilenceUsage: true,
	PreRunE:      bindFlags,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Run(ctx, optionsFromConfig())
	},
}

// Execute adds child commands to root and sets flags appropriately.
// Called by main.main(). Only needs to happen once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	f := rootCmd.Flags()
	f.String("addr", ":6380", "Address to listen on")
	f.String("log-level", "info", "Log level (debug, info, warn, error, fatal)")
	f.String("log-format", "text", "Log format (text, json)")

	f.Bool("snapshot", false, "Load and save snapshots of the keyspace")
	f.String("dir", "./data", "Snapshot directory")
	f.String("dbfilename", persistence.DefaultFile, "Snapshot file name")
	f.Duration("save-interval", 5*time.Minute, "How often to check whether a snapshot is due")
	f.Int64("min-changes", 1, "Changes needed before a periodic snapshot is written")

	f.Int("read-buffer", defaultReadBuffer, "Per-connection read buffer size")
	f.Int("write-buffer", defaultWriteBuffer, "Per-connection write buffer size")
	f.Int("max-clients", 10000, "Maximum concurrent connections (0 for no limit)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty disables)")
}

// initConfig loads env files and routes KEYGRID_* variables into viper.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("keygrid")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindFlags(c *cobra.Command, _ []string) error {
	return viper.BindPFlags(c.Flags())
}

// Options is the resolved server configuration.
type Options struct {
	Addr        string
	LogLevel    string
	LogFormat   string
	MetricsAddr string
	Snapshot    bool
	Persistence persistence.Config
	Server      server.Config
}

func optionsFromConfig() Options {
	return Options{
		Addr:        viper.GetString("addr"),
		LogLevel:    viper.GetString("log-level"),
		LogFormat:   viper.GetString("log-format"),
		MetricsAddr: viper.GetString("metrics-addr"),
		Snapshot:    viper.GetBool("snapshot"),
		Persistence: persistence.Config{
			Dir:          viper.GetString("dir"),
			File:         viper.GetString("dbfilename"),
			SaveInterval: viper.GetDuration("save-interval"),
			MinChanges:   viper.GetInt64("min-changes"),
		},
		Server: server.Config{
			Addr:        viper.GetString("addr"),
			ReadBuffer:  viper.GetInt("read-buffer"),
			WriteBuffer: viper.GetInt("write-buffer"),
			MaxClients:  viper.GetInt("max-clients"),
		},
	}
}

// instance is a running server and the components it owns.
type instance struct {
	server  *server.Server
	persist *persistence.Manager
}

func start(opts Options) (*instance, error) {
	var (
		s   *store.Store
		err error
	)
	if opts.Snapshot {
		if s, err = persistence.Load(opts.Persistence); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	} else {
		s = store.New()
	}

	inst := &instance{}
	waiters := blocking.New()
	engineOpts := []engine.Option{engine.WithCoordinator(waiters)}
	if opts.Snapshot {
		if inst.persist, err = persistence.NewManager(opts.Persistence, s); err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, engine.WithSaver(inst.persist))
	}
	e := engine.New(s, engineOpts...)

	st := stats.New(server.PortOf(opts.Server.Addr), opts.Server.MaxClients, stats.Sources{
		Keys:        s.Counts,
		Blocked:     waiters.Blocked,
		Persistence: persistenceInfo(inst.persist),
	})

	inst.server = server.New(opts.Server, e, cmd.Default(), st)
	if err := inst.server.Start(); err != nil {
		if inst.persist != nil {
			_ = inst.persist.Close()
		}
		return nil, err
	}
	return inst, nil
}

func persistenceInfo(m *persistence.Manager) func() stats.PersistenceInfo {
	if m == nil {
		return nil
	}
	return func() stats.PersistenceInfo {
		st := m.Status()
		return stats.PersistenceInfo{
			Enabled:         true,
			InProgress:      st.InProgress,
			LastSave:        st.LastSave,
			LastSaveOK:      st.LastSaveOK,
			ChangesPending:  st.ChangesPending,
			LastSaveSeconds: st.LastDuration.Seconds(),
		}
	}
}

// Close stops the server first so no command races the final snapshot.
func (i *instance) Close() error {
	var errs []error
	if err := i.server.Close(); err != nil {
		errs = append(errs, err)
	}
	if i.persist != nil {
		if err := i.persist.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run serves until ctx ends.
func Run(ctx context.Context, opts Options) error {
	logger.InitWithFormat(logger.LogLevel(opts.LogLevel), logger.Format(opts.LogFormat))

	inst, err := start(opts)
	if err != nil {
		logger.Errorf("Failed to start server: %v", err)
		return err
	}
	logger.Infof("Server started on %s", inst.server.Addr())
	if opts.Snapshot {
		logger.Infof("Snapshots enabled in %s every %v (min changes %d)",
			opts.Persistence.Dir, opts.Persistence.SaveInterval, opts.Persistence.MinChanges)
	}

	if opts.MetricsAddr != "" {
		go func() {
			if err := server.ServeMetrics(ctx, opts.MetricsAddr, inst.server.Stats()); err != nil {
				logger.Errorf("Metrics endpoint failed: %v", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")
	return inst.Close()
}
