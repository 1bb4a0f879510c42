package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/firegate/internal/gateway/app"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "firegate",
		Short:         "Role-based login and dashboard routing for the fire-service dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenStore(cfg, app.NewLogger(cfg))
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <roster.json>",
		Short: "Import departments, stations, units and principals from a roster file",
		Long: `Import a roster file. Department, station and unit references may be
given as ids or as embedded objects. New principals get a temporary password,
printed once, that must be changed on first login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			roster, err := service.DecodeRoster(f)
			if err != nil {
				return err
			}

			db, err := app.OpenStore(cfg, app.NewLogger(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			rosters := &service.RosterService{Store: db}
			res, err := rosters.Import(cmd.Context(), roster)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "departments=%d stations=%d units=%d principals=%d skipped=%d\n",
				res.Departments, res.Stations, res.Units, res.Principals, res.Skipped)

			logins := make([]string, 0, len(res.TemporaryPasswords))
			for login := range res.TemporaryPasswords {
				logins = append(logins, login)
			}
			sort.Strings(logins)
			for _, login := range logins {
				fmt.Fprintf(out, "%s\t%s\n", login, res.TemporaryPasswords[login])
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", app.BuildVersion)
		},
	}
}
