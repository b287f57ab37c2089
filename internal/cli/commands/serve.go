package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/structview/structview/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing model checks.

Endpoints:
  GET  /health             Liveness check
  POST /validate           Check a model (JSON, YAML, HCL or MessagePack body)
  POST /analyze            Submit a model for analysis
  GET  /validations        Recent validation reports
  GET  /validations/{id}   One validation report
  GET  /events             Server-sent validation events

Responses are JSON, or MessagePack when the client accepts application/msgpack.`,
		Example: `  # Listen on the default address
  structview serve

  # Listen on all interfaces and allow a local frontend
  structview serve --addr 0.0.0.0 --port 9000 --cors-origin http://localhost:3000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	// Values land in the server config through the flag loader.
	cmd.Flags().String("addr", "", "Address to listen on (default: 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to listen on (default: 8000)")
	cmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin (repeatable)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	serverCfg := cmdCtx.Cfg.GetServerConfig()
	srv := server.New(server.Config{
		Engine:       cmdCtx.Engine,
		Addr:         serverCfg.Addr,
		Port:         serverCfg.Port,
		CORSOrigins:  serverCfg.CORSOrigins,
		MaxBodyBytes: serverCfg.MaxBodyBytes,
		Logger:       cmdCtx.Logger,
	})

	r := cmdCtx.Renderer
	r.Printf("Listening on http://%s\n", srv.Address())
	if cmdCtx.Engine.Store() == nil {
		r.Muted("History disabled")
	}
	r.Muted("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
