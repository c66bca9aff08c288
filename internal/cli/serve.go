package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maloquacious/datacycle/internal/api"
	"github.com/maloquacious/datacycle/internal/config"
	"github.com/maloquacious/datacycle/internal/service"
	"github.com/maloquacious/datacycle/internal/store/sqlstore"
	"github.com/spf13/cobra"
)

// bootTimeout bounds the startup connection test and bootstrap.
const bootTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var exitAfter time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the schema and serve /api/data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, exitAfter)
		},
	}
	cmd.Flags().Int("port", config.DefaultPort, "public HTTP port")
	cmd.Flags().Int("admin-port", config.DefaultAdminPort, "admin HTTP port (JSON, loopback only)")
	cmd.Flags().Duration("shutdown-timeout", config.DefaultShutdownTimeout, "graceful shutdown timeout")
	cmd.Flags().DurationVar(&exitAfter, "exit-after", 0, "optional runtime; if set, server exits after this duration (testing)")
	return cmd
}

// runServe starts the public and admin servers with graceful shutdown.
// Storage failures during startup are logged and do not stop the server.
func runServe(cmd *cobra.Command, exitAfter time.Duration) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, bootTimeout)
	if err := st.Ping(bootCtx); err != nil {
		log.Error("error connecting to database: %v", err)
	} else {
		log.Info("connected to %s database", cfg.Database.Driver)
	}
	if err := st.Bootstrap(bootCtx); err != nil {
		log.Error("error creating table: %v", err)
	}
	cancel()

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(service.New(st, log), log, api.BuildInfo{
		Version:       version.String(),
		SchemaVersion: sqlstore.CurrentSchemaVersion,
		BuildDate:     buildDate,
	})
	srv.OnShutdown = stop

	publicSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(),
	}

	// Bind admin to 127.0.0.1 only (loopback enforcement)
	adminListener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.Server.AdminPort))
	if err != nil {
		return fmt.Errorf("admin listener bind failed (loopback only): %w", err)
	}
	adminSrv := &http.Server{
		Handler: srv.AdminRoutes(),
	}

	errCh := make(chan error, 2)

	go func() {
		log.Info("server listening on port %d", cfg.Server.Port)
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("public server error: %w", err)
		}
	}()

	go func() {
		log.Info("admin server listening on 127.0.0.1:%d (JSON-only)", cfg.Server.AdminPort)
		if err := adminSrv.Serve(adminListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	if exitAfter > 0 {
		log.Info("exit-after timer set: %s", exitAfter)
		timer := time.AfterFunc(exitAfter, stop)
		defer timer.Stop()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		log.Error("server error: %v", serveErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	_ = publicSrv.Shutdown(shutdownCtx)
	_ = adminSrv.Shutdown(shutdownCtx)
	log.Info("shutdown complete")
	return serveErr
}
