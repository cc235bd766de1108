package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/server"
)

var (
	serveConfigPath string
	servePort       int
	serveRetain     time.Duration
)

// retentionInterval is how often old audit records are pruned while serving.
const retentionInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing POST /resume/extract, GET /extractions and GET /health.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to JSON config file (environment variables take precedence)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().DurationVar(&serveRetain, "retain", 0, "Delete audit records older than this, e.g. 720h (0 keeps everything; needs DATABASE_URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, serveConfigPath, "http")
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != 0 {
		a.cfg.Port = servePort
	}

	opts := []server.Option{server.WithLogger(a.logger)}
	if a.db != nil {
		opts = append(opts, server.WithRunLister(a.db))
		if serveRetain > 0 {
			go retentionLoop(ctx, a.db, serveRetain, retentionInterval, a.logger)
		}
	} else if serveRetain > 0 {
		a.logger.Warn("--retain ignored: no DATABASE_URL configured")
	}

	return server.New(a.cfg, a.service, opts...).Run(ctx)
}
