package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/ctdash/internal/api"
	"github.com/joescharf/ctdash/internal/datadir"
	"github.com/joescharf/ctdash/internal/output"
	"github.com/joescharf/ctdash/internal/store"
)

// defaultPort is where the dashboard listens unless told otherwise.
const defaultPort = 31339

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ctdash [port]",
	Short: "Read-only web dashboard for a claude-threads orchestrator",
	Long: `ctdash serves a live operational dashboard over the state a
claude-threads orchestrator leaves on disk: its SQLite database, log
files, and PID files. It never writes any of that state.

With no arguments it listens on port ` + strconv.Itoa(defaultPort) + `. An optional positional
port argument overrides that.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd.Context(), args)
	},
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/ctdash/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "claude-threads data directory (default: auto-detect)")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.Flags().IntP("port", "p", defaultPort, "Port to listen on")
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDirFunc(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CTDASH")
	viper.AutomaticEnv()

	// CT_DATA_DIR is the convention the orchestrator itself honors, so
	// accept it alongside the prefixed form.
	_ = viper.BindEnv("data_dir", "CTDASH_DATA_DIR", "CT_DATA_DIR")

	viper.SetDefault("port", defaultPort)
	viper.SetDefault("data_dir", "")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ctdash"), nil
}

// resolvePaths picks the data root once, at command start.
func resolvePaths() datadir.Paths {
	return datadir.NewPaths(datadir.Resolve(viper.GetString("data_dir")))
}

// listenPort decides the port: positional argument wins over flag,
// config file, and environment.
func listenPort(args []string) (int, error) {
	if len(args) == 0 {
		return viper.GetInt("port"), nil
	}
	port, err := strconv.Atoi(args[0])
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", args[0])
	}
	return port, nil
}

func serveRun(ctx context.Context, args []string) error {
	port, err := listenPort(args)
	if err != nil {
		return err
	}

	paths := resolvePaths()
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     api.NewServer(store.New(paths.DB()), paths).Router(),
		ReadTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}

	ui.Info("Dashboard at http://localhost:%d", port)
	ui.VerboseLog("Data directory: %s", paths.Root())

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		ui.Info("Dashboard stopped")
		return nil
	}
}
