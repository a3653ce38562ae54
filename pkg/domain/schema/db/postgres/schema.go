package postgres

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain/schema/db"
	xe "github.com/opre/ops/pkg/errors"
)

// upgradeLock is the advisory lock key serializing schema upgrades.
const upgradeLock = 0x6f707375

type pgSchema struct {
	pool             kpool.Pool
	schemaRepository string
}

var _ db.Interface = &pgSchema{}

// New creates a new Schema.
//
// # Args
//
// - schemaRepository: The path to the schema repository directory.
// It has directories named by version numbers (1, 2, ...), each of them containing *.sql files.
func New(pool kpool.Pool, schemaRepository string) db.Interface {
	return &pgSchema{
		pool:             pool,
		schemaRepository: schemaRepository,
	}
}

type version struct {
	Version int
	Root    string
}

// Apply runs *.sql files of the version in lexical order.
func (v version) Apply(ctx context.Context, conn kpool.Queryer) error {
	return filepath.WalkDir(v.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		query, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return xe.WrapWithNote(path, err)
		}
		return nil
	})
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

// currentVersion reads the version in the database.
//
// The table is probed first, since a failing query aborts the transaction conn may be in.
func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var exists bool
	if err := conn.QueryRow(
		ctx, `select to_regclass('"schema_version"') is not null`,
	).Scan(&exists); err != nil {
		return -1, xe.Wrap(err)
	}
	if !exists {
		return 0, nil
	}

	var version *int
	if err := conn.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&version); err != nil {
		return -1, xe.Wrap(err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	return kpool.InTx(ctx, s.pool, func(tx kpool.Tx) error {
		if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, upgradeLock); err != nil {
			return xe.Wrap(err)
		}

		current, err := currentVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, v := range schemaVersions {
			if v.Version <= current {
				continue
			}
			if err := v.Apply(ctx, tx); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `delete from "schema_version"`); err != nil {
				return xe.Wrap(err)
			}
			if _, err := tx.Exec(
				ctx, `insert into "schema_version" ("version") values ($1)`, v.Version,
			); err != nil {
				return xe.Wrap(err)
			}
		}
		return nil
	})
}

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.schemaRepository); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	checkVersion := func() {
		vs, err := s.versions()
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}

		current, err := s.Version(ctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}

		if len(vs) == 0 {
			return
		}
		if latest := vs[len(vs)-1].Version; current < latest {
			can(fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)", current, latest,
			))
		}
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Clean(s.schemaRepository) != filepath.Dir(ev.Name) {
					continue
				}
				checkVersion()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				can(fmt.Errorf("watching schema repository: %w", err))
				return
			}
		}
	}()

	checkVersion()
	return cctx, func() { can(nil) }
}

// versions lookup the schema from the schema repository.
//
// # Returns
//
// - []version: The list of schema versions, sorted by version number.
// Entries not named by a positive number are ignored.
//
// - error: The error if any.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := os.ReadDir(s.schemaRepository)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil || v <= 0 {
			continue
		}
		schemaVersions = append(schemaVersions, version{
			Version: v,
			Root:    filepath.Join(s.schemaRepository, entry.Name()),
		})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)

	return schemaVersions, nil
}

// Null is a schema without repository. It never upgrades, and never expires contexts.
func Null() db.Interface {
	return nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Upgrade(ctx context.Context) error {
	return errors.New("no schema repository available")
}

func (nullSchema) Version(ctx context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
