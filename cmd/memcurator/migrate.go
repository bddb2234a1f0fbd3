package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BaSui01/memcurator/internal/migration"
)

// =============================================================================
// 🗃️ migrate 命令
// =============================================================================

func newMigrateCommand(a *app) *cobra.Command {
	var (
		dbType string
		dbURL  string
	)
	cmd := &cobra.Command{
		Use:   "migrate <action> [n]",
		Short: "Manage the curated document schema (postgres, mysql)",
		Long: `Apply or roll back the curated document schema.

Actions: ` + strings.Join(migration.Commands, ", ") + `

steps, goto and force take one numeric argument; pass negative step
counts after "--". SQLite databases are
migrated automatically by the store when it opens.`,
		Example: `  memcurator migrate up --config config.yaml
  memcurator migrate status
  memcurator migrate steps -- -1
  memcurator migrate up --db-type postgres --db-url "postgres://u:p@localhost:5432/mem?sslmode=disable"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}
			defer a.sync()

			var (
				m   *migration.DefaultMigrator
				err error
			)
			switch {
			case dbType != "" && dbURL != "":
				m, err = migration.NewMigratorFromURL(dbType, dbURL, a.logger)
			case dbURL != "":
				return fmt.Errorf("--db-url requires --db-type")
			default:
				dbCfg := a.cfg.Database
				if dbType != "" {
					dbCfg.Driver = dbType
				}
				m, err = migration.NewMigratorFromDatabaseConfig(dbCfg, a.logger)
			}
			if errors.Is(err, migration.ErrManagedByGORM) {
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is created by the store on open; nothing to migrate")
				return nil
			}
			if err != nil {
				return fmt.Errorf("create migrator: %w", err)
			}
			defer m.Close()

			cli := migration.NewCLI(m)
			cli.SetOutput(cmd.OutOrStdout())
			return cli.Run(cmd.Context(), args[0], args[1:])
		},
	}
	cmd.Flags().StringVar(&dbType, "db-type", "", "database type: postgres or mysql (default from config)")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "database URL (default built from config)")
	return cmd
}
