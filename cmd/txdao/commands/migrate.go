package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/txdao/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply every pending up migration for the configured driver.

Examples:
  txdao migrate --db-path ./txdao.db
  txdao migrate --db-driver pgx --db-url postgres://localhost/txdao`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close(cmd.OutOrStdout())

			if err := db.Migrate(a.cfg.DBDriver, a.cfg.DSN()); err != nil {
				return err
			}
			a.logger.Info("migrations applied", "driver", a.cfg.DBDriver)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
