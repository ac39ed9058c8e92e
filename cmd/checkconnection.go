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
)

func checkConnectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-connection",
		Short: "Check that the target database is reachable",
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
			opts := options.NewBuilder().WithSSLMode(sslMode).Build()

			sp, _ := pterm.DefaultSpinner.WithText("Checking connection...").Start()

			version, err := db.CheckConnection(ctx, dsn, opts)
			if err != nil {
				sp.Fail(fmt.Sprintf("Connection check failed: %s", err))
				return err
			}

			sp.Success(fmt.Sprintf("Connection successful: %s", version))
			return nil
		},
	}

	return cmd
}
