package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/repute-network/repute/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to config file (default ~/.repute/config.toml)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reputation daemon",
	Long:  `Start the reputation daemon: opens storage and serves the HTTP API until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = daemon.ConfigPath()
	}

	cfg, err := daemon.LoadConfig(path)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}
