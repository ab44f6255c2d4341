// Serve command: the REST API and websocket change feed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/internal/live"
	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/server"
	"github.com/mesh-intelligence/casebook/internal/session"
	"github.com/mesh-intelligence/casebook/internal/stats"
)

var serveListen string

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, :8077)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and change feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		addr := serveListen
		if addr == "" {
			addr = cfg.GetString(cfgKeyListen)
		}

		store, _, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		cases := repo.NewTestCaseRepo(store)
		folders := repo.NewFolderRepo(store)
		runs := repo.NewTestRunRepo(store)
		users := repo.NewUserRepo(store)

		// The server process runs pre-signed-in; the sign-in endpoint
		// switches to real credentials when users exist.
		sessions := session.NewProviderWithSession(users, &session.Session{UserID: "local", Email: "local@casebook"})

		projectCtx := live.NewProjectContext(store, repo.NewProjectRepo(store), sessions)
		defer projectCtx.Close()
		caseCtx := live.NewCaseContext(store, cases, folders, stats.NewAggregator(cases), projectCtx)
		defer caseCtx.Close()

		srv := server.New(store, projectCtx, caseCtx, runs, sessions)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			fmt.Fprintln(os.Stderr, "shutting down:", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}
