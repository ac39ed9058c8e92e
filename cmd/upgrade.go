// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mshamis85/pgupgrader/cmd/flags"
	"github.com/mshamis85/pgupgrader/internal/connstr"
	"github.com/mshamis85/pgupgrader/pkg/db"
	"github.com/mshamis85/pgupgrader/pkg/options"
	"github.com/mshamis85/pgupgrader/pkg/upgrade"
)

func upgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply every pending upgrader to the target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dsn, err := connstr.Build(flags.ConnectionString(), flags.ConnectionArgs())
			if err != nil {
				return err
			}

			sslMode := options.SSLDisable
			if flags.TLS() {
				sslMode = options.SSLRequire
			}

			opts := options.NewBuilder().
				WithSchema(flags.Schema()).
				WithCreateSchema(flags.CreateSchema()).
				WithSSLMode(sslMode).
				Build()

			conn, err := db.Connect(ctx, dsn, opts)
			if err != nil {
				return err
			}
			defer conn.Close()

			sqlConn, err := conn.Conn(ctx)
			if err != nil {
				return err
			}
			defer sqlConn.Close()

			sp, _ := pterm.DefaultSpinner.WithText("Applying upgraders...").Start()

			if err := upgrade.Apply(ctx, sqlConn, flags.Path(), opts, upgrade.NewLogger()); err != nil {
				sp.Fail(fmt.Sprintf("Upgrade failed: %s", err))
				return err
			}

			sp.Success("Database is up to date")
			return nil
		},
	}

	flags.UpgradeFlags(cmd)

	return cmd
}
