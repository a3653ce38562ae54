package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opre/ops/pkg/domain/ops"
	kio "github.com/opre/ops/pkg/io"
	"github.com/opre/ops/pkg/utils/retry"
	"github.com/opre/ops/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema string `flag:"schema" help:"The path to the schema repository directory."`
	DryRun bool   `flag:"dry-run" help:"Print the schema version in the database, and exit without upgrading."`
	Wait   int    `flag:"wait" help:"Seconds to wait for the database to accept connections."`
}

const ARG_SCHEMA_DEST = "ARG_SCHEMA_DEST"

func main() {
	logger := log.New(os.Stderr, "[schema_upgrader] ", log.LstdFlags)
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		p, err := strconv.Atoi(sp)
		if err == nil {
			port = p
		}
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),

			Schema: os.Getenv("OPS_SCHEMA"),
			Wait:   30,
		},
		flarc.Args{
			{
				Name: ARG_SCHEMA_DEST, Help: "The schema files are copied to these directories.",
				Required: false, Repeatable: false,
			},
		},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()

			dest := c.Args()[ARG_SCHEMA_DEST]
			if len(dest) != 0 {
				logger.Println("copying schema files...")
				if err := kio.DirCopy(flags.Schema, dest[0]); err != nil {
					return err
				}
			}

			db, err := connect(ctx, logger, flags)
			if err != nil {
				return err
			}
			defer db.Close()

			schema := db.Schema().Database()
			if flags.DryRun {
				v, err := schema.Version(ctx)
				if err != nil {
					return err
				}
				logger.Printf("schema version in database: %d", v)
				return nil
			}

			if err := schema.Upgrade(ctx); err != nil {
				return err
			}
			v, err := schema.Version(ctx)
			if err != nil {
				return err
			}
			logger.Printf("schema is upgraded to version %d", v)
			return nil
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}

// connect opens the database, retrying until it accepts connections or flags.Wait seconds pass.
func connect(ctx context.Context, logger *log.Logger, flags Flag) (ops.Ops, error) {
	wctx, cancel := context.WithTimeout(ctx, time.Duration(flags.Wait)*time.Second)
	defer cancel()

	return retry.Blocking(
		wctx,
		retry.ExponentialBackoff(500*time.Millisecond, 1.5, 5*time.Second),
		func() (ops.Ops, error) {
			db, err := ops.New(
				ctx, DatabaseURI(flags),
				ops.WithSchemaRepository(flags.Schema),
			)
			if err != nil {
				logger.Printf("database is not ready: %s", err)
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return db, nil
		},
	)
}

// DatabaseURI builds a connection string of postgres from flags.
func DatabaseURI(flags Flag) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(flags.User, flags.Password),
		Host:   fmt.Sprintf("%s:%d", flags.Host, flags.Port),
		Path:   "/" + flags.Database,
	}
	return u.String()
}
