// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands of the libweb
// program. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db"
// sub-command can be used for initializing the database.
//
//	./libweb [-c /path/of/main/config.yaml]           # start web server
//	./libweb db init-dev [-c /path/of/main/config.yaml]
//	./libweb db init-prod [-c /path/of/main/config.yaml]
//
// A .env file in the working directory (if any) is loaded before the
// configuration file, so secrets like the JWT signing key may be kept
// out of the config file.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/momeni/school-library/pkg/adapter/config"
	"github.com/momeni/school-library/pkg/adapter/restful/gin"
	"github.com/momeni/school-library/pkg/adapter/restful/gin/routes"
	"github.com/momeni/school-library/pkg/core/log"
	"github.com/momeni/school-library/pkg/core/model"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:   "libweb",
	Short: "The school library circulation web service",
	Long: `The school library circulation web service which keeps the
catalog of books, lends their copies to the school members, and records
the loans history. Callers are authenticated by bearer tokens and their
roles are looked up from the users table, so each operation may decide
which roles are permitted.

The database may be a PostgreSQL server or the process memory (when
the memory driver is configured). The memory driver is seeded with the
demo users and books on start up and a token is printed for each demo
user, so the APIs may be tried without any database server.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, rr, err := c.Database.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer p.Close()
	if c.Database.Driver == config.DriverMemory {
		uu, err := c.NewSchemaUseCase(rr).Seed(ctx, p)
		if err != nil {
			return fmt.Errorf("seeding memory database: %w", err)
		}
		if err = printTokens(cmd.OutOrStdout(), c, uu); err != nil {
			return err
		}
	}
	authn, err := c.Auth.NewAuthenticator()
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}
	var e *gin.Engine = c.Gin.NewEngine()
	e.GET("/healthz", gin.Healthz)
	err = routes.Register(e, p, rr, c, authn.Middleware())
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("addr", addr))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 10*time.Second,
	)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving HTTP: %w", err)
	}
	return nil
}

// loadConfig loads the .env file (if it exists) and then parses and
// validates the cfgPath configuration file.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	if err = c.Logging.Apply(os.Stderr); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return c, nil
}

// printTokens issues one bearer token per uu user and writes them to
// w, one line per user.
func printTokens(w io.Writer, c *config.Config, uu []model.User) error {
	a, err := c.Auth.NewAuthenticator()
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}
	ttl := c.Auth.TTL()
	fmt.Fprintf(w, "demo tokens (valid for %s):\n", ttl)
	for _, u := range uu {
		tok, err := a.Issue(u.ID, ttl)
		if err != nil {
			return fmt.Errorf("issuing token for %q: %w", u.Name, err)
		}
		fmt.Fprintf(w, "  %-10s %-20s %s\n", u.Role, u.Name, tok)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. Failures are printed
// to stderr and cause a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.Flags().StringVarP(
		&addr, "addr", "a", ":8080", "HTTP listening address",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}
