// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mshamis85/pgupgrader/cmd/flags"
)

// Version is the pgupgrader version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("PGUPGRADER")
	viper.AutomaticEnv()

	// DATABASE_URL and PGPASSWORD follow the upstream psql/libpq convention
	// rather than the PGUPGRADER_ prefix, so bind them explicitly.
	viper.BindEnv("DATABASE_URL", "DATABASE_URL")
	viper.BindEnv("PGPASSWORD", "PGPASSWORD")
}

var rootCmd = &cobra.Command{
	Use:          "pgupgrader",
	Short:        "Apply versioned SQL upgraders to a PostgreSQL database",
	SilenceUsage: true,
	Version:      Version,
}

// Execute executes the root command.
func Execute() error {
	flags.PgConnectionFlags(rootCmd)

	rootCmd.AddCommand(upgradeCmd())
	rootCmd.AddCommand(checkConnectionCmd())

	return rootCmd.Execute()
}
