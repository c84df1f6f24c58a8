package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/dcode-github/realestate_console/config"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/routes"
	"github.com/dcode-github/realestate_console/utils"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connect(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(pool)

			if err := repositories.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}

			redisClient, err := config.InitRedis(cfg)
			if err != nil {
				utils.Logger.WithError(err).Warn("Redis unavailable, caching reads in process")
			}
			if redisClient != nil {
				defer redisClient.Close()
			}

			router := mux.NewRouter()
			routes.Routes(router, buildDeps(cfg, pool, redisClient))

			corsOptions := cors.New(cors.Options{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
				AllowedHeaders:   []string{"Content-Type", "Authorization"},
				AllowCredentials: true,
			})

			server := &http.Server{
				Addr:           ":" + cfg.Port,
				Handler:        corsOptions.Handler(router),
				ReadTimeout:    60 * time.Second,
				WriteTimeout:   60 * time.Second,
				MaxHeaderBytes: 1 << 20,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.Logger.Infof("Server running on port %s", cfg.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("error starting server: %w", err)
			case <-sigCh:
			}

			utils.Logger.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("error during server shutdown: %w", err)
			}
			utils.Logger.Info("Server gracefully stopped")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connect(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(pool)

			if err := repositories.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			utils.Logger.Info("Schema is up to date")
			return nil
		},
	}
}

func recountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recalculate the available property count of every city",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connect(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(pool)

			deps := buildDeps(cfg, pool, nil)
			res, err := deps.Cities.RecountAll(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(res.Counts))
			for name := range res.Counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, res.Counts[name])
			}
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Add a console user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := connect(cfg)
			if err != nil {
				return err
			}
			defer config.CloseDB(pool)

			user, err := buildDeps(cfg, pool, nil).Auth.CreateUser(cmd.Context(), username, password, role)
			if err != nil {
				return err
			}
			utils.Logger.WithField("username", user.Username).Info("User created")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "plaintext password, stored as a bcrypt hash")
	cmd.Flags().StringVar(&role, "role", "admin", "user role")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
