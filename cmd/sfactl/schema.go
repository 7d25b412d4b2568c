// cmd/sfactl/schema.go
package main

import (
	"fmt"

	"github.com/dalemusser/sfahub/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func newEnsureSchemaCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-schema",
		Short: "create collections, validators and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := g.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, closeFn, err := g.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := bootstrap.EnsureDatabase(cmd.Context(), db, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ensured on %s\n", db.Name())
			return nil
		},
	}
}
