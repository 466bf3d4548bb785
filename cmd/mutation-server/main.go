// mutation-server 通过 HTTP 提供命令验证与执行服务
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-command/pkg/config"
	"katydid-common-command/pkg/database"
	"katydid-common-command/pkg/logger"
	"katydid-common-command/pkg/mutation/core"
	"katydid-common-command/pkg/mutation/httpapi"
	"katydid-common-command/pkg/mutation/plugin"
	"katydid-common-command/pkg/mutation/registry"
	"katydid-common-command/pkg/mutation/store/redisset"
	"katydid-common-command/pkg/runid"
	"katydid-common-command/pkg/signup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "mutation-server",
		Short:         "Serve registered mutations over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (yaml/json/toml)")

	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, &signup.User{}); err != nil {
			return err
		}
	}

	var blocklist signup.Blocklist
	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		blocklist = redisset.New(client, cfg.Redis.BlocklistKey)
	}

	logging := plugin.NewLoggingPlugin().WithLogger(plugin.NewZapLogger(log))
	if err := logging.Init(map[string]any{"log_inputs": cfg.Mutation.LogInputs}); err != nil {
		return err
	}

	signupCmd, err := signup.New(signup.Options{
		DB:        db,
		Blocklist: blocklist,
		Logger:    log,
		Plugins:   []core.Plugin{logging},
	})
	if err != nil {
		return err
	}

	reg := registry.Default()
	if err := reg.Register(signupCmd); err != nil {
		return err
	}

	ids, err := runid.New(cfg.HTTP.NodeID)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.HTTP.Mode)
	handler := httpapi.NewHandler(reg,
		httpapi.WithLogger(log),
		httpapi.WithRaiseOnError(cfg.Mutation.RaiseOnError),
		httpapi.WithRequestIDs(ids),
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr), zap.Strings("commands", reg.Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
