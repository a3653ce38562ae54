package testenv

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
)

// EnvDatabaseURL is the environment variable naming the database for tests.
//
// The database should have the schema applied by the schema upgrader.
// Tests needing a database are skipped when it is not set.
const EnvDatabaseURL = "OPS_TEST_DATABASE_URL"

type pg struct {
	pool *pgxpool.Pool
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Cleanup(func() {
		t.Helper()
		ClearTables(ctx, p.pool, t)
	})

	ClearTables(ctx, p.pool, t)
	return kpool.Wrap(p.pool)
}

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are cleaned up before returning and after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

// NewPoolBroaker returns a PoolBroaker connecting to the database named by OPS_TEST_DATABASE_URL.
//
// When it is not set, t is skipped.
func NewPoolBroaker(ctx context.Context, t *testing.T) PoolBroaker {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s is not set", EnvDatabaseURL)
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	return &pg{pool: pool}
}

// ClearTables truncates tables written by operations.
//
// Reference data (workflow templates) is kept, and cursors of loops are rewound.
func ClearTables(ctx context.Context, p *pgxpool.Pool, t *testing.T) {
	t.Helper()

	conn, err := p.Acquire(ctx)
	if err != nil {
		t.Errorf("fail to clean-up tables.: %v", err)
		return
	}
	defer conn.Release()

	for _, command := range []string{
		`truncate
			"ops_event", "ops_db_history", "can_history", "notification",
			"change_request", "workflow_step_instance", "workflow_instance",
			"procurement_tracker_step", "procurement_tracker", "procurement_action",
			"budget_line_item", "agreement", "procurement_shop_fee", "procurement_shop",
			"can_funding_received", "can_funding_budget", "can", "portfolio",
			"division", "ops_user"
		RESTART IDENTITY cascade`,
		`update "loop_cursor" set "last_event_id" = 0`,
	} {
		if _, err := conn.Exec(ctx, command); err != nil {
			t.Errorf("fail to clean-up tables.: %v", err)
		}
	}
}

// NewIsolatedPool returns a pool working in a new empty postgres schema (namespace).
//
// The namespace is dropped after t. When OPS_TEST_DATABASE_URL is not set, t is skipped.
func NewIsolatedPool(ctx context.Context, t *testing.T, namespace string) kpool.Pool {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s is not set", EnvDatabaseURL)
	}

	admin, err := pgxpool.Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(admin.Close)

	ident := pgx.Identifier{namespace}.Sanitize()
	if _, err := admin.Exec(ctx, `drop schema if exists `+ident+` cascade`); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.Exec(ctx, `create schema `+ident); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), `drop schema if exists `+ident+` cascade`); err != nil {
			t.Logf("fail to drop schema %s: %v", namespace, err)
		}
	})

	conf, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatal(err)
	}
	conf.ConnConfig.RuntimeParams["search_path"] = namespace
	pool, err := pgxpool.ConnectConfig(ctx, conf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	return kpool.Wrap(pool)
}
