// Command whitelist-admin serves the birthdate ban whitelist admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/router-for-me/WhitelistAdmin/internal/app"
	"github.com/router-for-me/WhitelistAdmin/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev" // set by the linker

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Each call returns a fresh tree.
func NewRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "whitelist-admin",
		Short:         "Admin API for the birthdate ban whitelist.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultConfigPath))

	cmd.AddCommand(
		newServeCmd(&opts),
		newMigrateCmd(&opts),
		newCreateAdminCmd(&opts),
		newConfigCmd(&opts),
	)
	return cmd
}

func newServeCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServer(cmd.Context(), *opts)
		},
	}
}

func newMigrateCmd(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(cmd.Context(), *opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateAdminCmd(opts *app.Options) *cobra.Command {
	var params app.CreateAdminParams
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.Password == "" {
				params.Password = os.Getenv("WHITELIST_ADMIN_PASSWORD")
			}
			admin, err := app.CreateAdmin(cmd.Context(), *opts, params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.Username, "username", "", "login name")
	cmd.Flags().StringVar(&params.Password, "password", "", "password (default $WHITELIST_ADMIN_PASSWORD)")
	cmd.Flags().BoolVar(&params.IsAdmin, "admin", false, "grant every capability")
	cmd.Flags().StringVar(&params.UserType, "user-type", "staff", "label shown on admin pages")
	cmd.Flags().StringSliceVar(&params.Capabilities, "capability", nil, `capability name, e.g. "access birthdate ban whitelist" (repeatable)`)
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newConfigCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with every default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolveConfigPath(opts.ConfigPath)
			if _, errStat := os.Stat(path); errStat == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if errStat != nil && !errors.Is(errStat, os.ErrNotExist) {
				return errStat
			}
			if err := config.WriteExample(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
