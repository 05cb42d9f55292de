package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config"
	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/jobs"
	"github.com/Aman-ydav/CareSync-sub000/logger"
	"github.com/Aman-ydav/CareSync-sub000/migrations"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/routes"
	"github.com/Aman-ydav/CareSync-sub000/server"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	startServer = server.Start
	isTest      = false
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("CareSync exited with an error")
		os.Exit(1)
	}
}

func run(args []string) error {
	root := rootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func rootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "caresync",
		Short:         "CareSync appointment scheduling and health records API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Setup(cfg.LogLevel, cfg.IsDev())
			return util.RegisterValidators()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(serveOptions(cfg))
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations, the completion job and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(serveOptions(cfg))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create indexes and backfill appointment fields, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := serveOptions(cfg)
			opts.CacheEnabled = false
			opts.WebServerEnabled = false
			opts.JobsEnabled = false
			opts.MigrationEnabled = true
			return startServer(opts)
		},
	})

	root.AddCommand(tokenCommand(func() *config.Config { return cfg }))
	return root
}

func serveOptions(cfg *config.Config) server.Options {
	defaultopts := server.GetDefaultOptions(cfg)

	options := server.Options{
		Config:           cfg,
		MongoEnabled:     defaultopts.MongoEnabled,
		CacheEnabled:     defaultopts.CacheEnabled,
		WebServerEnabled: defaultopts.WebServerEnabled,

		JobsEnabled: defaultopts.JobsEnabled && !isTest,
		JobsHandler: func(deps *server.Deps) (func(context.Context), error) {
			c, err := jobs.StartScheduler(cfg.CompletionSchedule, deps.Services.Appointments)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context) { jobs.Stop(ctx, c) }, nil
		},

		WebServerPreHandler: func(r *gin.Engine, deps *server.Deps) {
			routes.Routes(r, cfg.JWTSecret, deps.Services, deps.Metrics)
		},

		MigrationEnabled: defaultopts.MigrationEnabled && !isTest,
		MigrationHandler: func(ctx context.Context, deps *server.Deps) error {
			if isTest {
				return nil
			}
			return migrations.Run(ctx, deps.Database)
		},
	}
	return options
}

// tokenCommand signs a bearer token for local testing. It refuses to run in production.
func tokenCommand(cfg func() *config.Config) *cobra.Command {
	var (
		userID string
		r      string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.IsProduction() {
				return errors.New("token command is disabled in production")
			}
			requested := role.Role(r)
			if !requested.IsValid() {
				return errors.New(util.INVALID_ROLE)
			}
			token, err := authorization.SignToken(c.JWTSecret, userID, requested, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to put in the token")
	cmd.Flags().StringVar(&r, "role", string(role.ADMIN), "ADMIN, DOCTOR or PATIENT")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
