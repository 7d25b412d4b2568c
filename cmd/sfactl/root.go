// cmd/sfactl/root.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	mongoURIFlagName = "mongo-uri"
	dbFlagName       = "db"
	debugFlagName    = "debug"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	mongoURI string
	database string
	debug    bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	// Same .env the server reads; missing is fine.
	_ = godotenv.Load()

	g := &globals{}
	cmd := &cobra.Command{
		Use:           "sfactl",
		Short:         "SFAHub operator commands",
		Long:          `Operator commands for SFAHub: bulk CSV imports and schema setup.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.mongoURI, mongoURIFlagName,
		envOr("SFAHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	cmd.PersistentFlags().StringVar(&g.database, dbFlagName,
		envOr("SFAHUB_MONGO_DATABASE", "sfahub"), "MongoDB database name")
	cmd.PersistentFlags().BoolVar(&g.debug, debugFlagName, false, "verbose logging")

	cmd.AddCommand(newImportCmd(g), newEnsureSchemaCmd(g))
	return cmd
}

func (g *globals) logger() (*zap.Logger, error) {
	if g.debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// connect opens the database and returns a func that closes it.
func (g *globals) connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.mongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", g.mongoURI, err)
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ping %s: %w", g.mongoURI, err)
	}
	return client.Database(g.database), closeFn, nil
}
