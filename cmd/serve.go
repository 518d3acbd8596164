package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvFlags selectionFlags
	srvAddr  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views and exports over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := srvFlags.selection(cmd)
		if err != nil {
			return err
		}
		// Load and validate once; a bad data directory aborts startup.
		tables, err := srvFlags.loadTables()
		if err != nil {
			return err
		}

		addr := cfg.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(tables, server.Options{Defaults: defaults, Logger: logger})
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on http://%s (Ctrl+C to stop)\n", tables.Dir, addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	srvFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config listen_addr)")
}
