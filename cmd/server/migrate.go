package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"classifieds/internal/db"
	"classifieds/internal/logger"
)

var steps int

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Manage the database schema.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback migrations
  status  - Show applied migrations`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long: `Rollback the most recently applied migrations.

Examples:
  server migrate down            # Rollback last migration
  server migrate down --steps 2  # Rollback the last two`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrateUp(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer h.Close()
	versions, err := db.Applied(h)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema is at version %04d\n", latest(versions))
	return nil
}

func runMigrateDown(cmd *cobra.Command) error {
	if steps < 1 {
		return fmt.Errorf("--steps must be at least 1, got %d", steps)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer h.Close()
	for i := 0; i < steps; i++ {
		v, err := db.RollbackLast(h)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		if v == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
			break
		}
		logger.Infof("rolled back migration %04d", v)
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %04d\n", v)
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer h.Close()
	versions, err := db.Applied(h)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "driver: %s\n", h.Dialect)
	if len(versions) == 0 {
		fmt.Fprintln(out, "no migrations applied")
		return nil
	}
	for _, v := range versions {
		fmt.Fprintf(out, "applied %04d\n", v)
	}
	return nil
}

func latest(versions []int) int {
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1]
}
