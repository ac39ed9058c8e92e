// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mshamis85/pgupgrader/internal/connstr"
)

func ConnectionString() string {
	return viper.GetString("DATABASE_URL")
}

func Host() string {
	return viper.GetString("HOST")
}

func Port() int {
	return viper.GetInt("PORT")
}

func User() string {
	return viper.GetString("USER")
}

func Password() string {
	return viper.GetString("PGPASSWORD")
}

func Database() string {
	return viper.GetString("DBNAME")
}

func Schema() string {
	return viper.GetString("SCHEMA")
}

func CreateSchema() bool {
	return viper.GetBool("CREATE_SCHEMA")
}

func TLS() bool {
	return viper.GetBool("TLS")
}

func Path() string {
	return viper.GetString("PATH")
}

// ConnectionArgs returns the discrete connection flags as a connstr.ConnectionArgs.
func ConnectionArgs() connstr.ConnectionArgs {
	return connstr.ConnectionArgs{
		Host:     Host(),
		Port:     Port(),
		User:     User(),
		Password: Password(),
		Database: Database(),
	}
}

// PgConnectionFlags registers the connection flags as persistent flags on
// cmd (the root command) and binds each to its viper key, with DATABASE_URL
// and PGPASSWORD picked up automatically from the environment.
func PgConnectionFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("connection-string", "", "Full Postgres connection string (env DATABASE_URL)")
	cmd.PersistentFlags().String("host", "", "Postgres host")
	cmd.PersistentFlags().Int("port", 5432, "Postgres port")
	cmd.PersistentFlags().String("user", "", "Postgres user")
	cmd.PersistentFlags().String("password", "", "Postgres password (env PGPASSWORD)")
	cmd.PersistentFlags().String("database", "", "Postgres database name")
	cmd.PersistentFlags().Bool("tls", false, "Require TLS when connecting")

	viper.BindPFlag("DATABASE_URL", cmd.PersistentFlags().Lookup("connection-string"))
	viper.BindPFlag("HOST", cmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("PORT", cmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("USER", cmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("PGPASSWORD", cmd.PersistentFlags().Lookup("password"))
	viper.BindPFlag("DBNAME", cmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("TLS", cmd.PersistentFlags().Lookup("tls"))
}

// UpgradeFlags registers the upgrade-specific flags (upgraders directory,
// target schema, schema creation) on cmd.
func UpgradeFlags(cmd *cobra.Command) {
	cmd.Flags().String("path", ".", "Path to the directory containing upgrader files")
	cmd.Flags().String("schema", "", "Target schema (optional)")
	cmd.Flags().Bool("create-schema", false, "Create the target schema if it does not exist")

	viper.BindPFlag("PATH", cmd.Flags().Lookup("path"))
	viper.BindPFlag("SCHEMA", cmd.Flags().Lookup("schema"))
	viper.BindPFlag("CREATE_SCHEMA", cmd.Flags().Lookup("create-schema"))
}
