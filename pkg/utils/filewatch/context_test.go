package filewatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opre/ops/pkg/utils/filewatch"
)

func TestUntilModifyContext(t *testing.T) {
	for name, testcase := range map[string]struct {
		// watch returns the path to be watched
		watch func(dir string) string
		// modify changes something under dir
		modify func(t *testing.T, dir string)
	}{
		"when a file is created in a watched directory, it cancels context": {
			watch: func(dir string) string { return dir },
			modify: func(t *testing.T, dir string) {
				f, err := os.Create(filepath.Join(dir, "config.yaml"))
				if err != nil {
					t.Fatal(err)
				}
				f.Close()
			},
		},
		"when a watched file is written, it cancels context": {
			watch: func(dir string) string { return filepath.Join(dir, "config.yaml") },
			modify: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: 8081"), 0644); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when a watched file is deleted, it cancels context": {
			watch: func(dir string) string { return filepath.Join(dir, "config.yaml") },
			modify: func(t *testing.T, dir string) {
				if err := os.Remove(filepath.Join(dir, "config.yaml")); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when a watched file is renamed, it cancels context": {
			watch: func(dir string) string { return filepath.Join(dir, "config.yaml") },
			modify: func(t *testing.T, dir string) {
				if err := os.Rename(
					filepath.Join(dir, "config.yaml"), filepath.Join(dir, "config.yaml.old"),
				); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when a watched file is changed its mode, it cancels context": {
			watch: func(dir string) string { return filepath.Join(dir, "config.yaml") },
			modify: func(t *testing.T, dir string) {
				if err := os.Chmod(filepath.Join(dir, "config.yaml"), 0600); err != nil {
					t.Fatal(err)
				}
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: 8080"), 0644); err != nil {
				t.Fatal(err)
			}

			ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), testcase.watch(dir))
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()

			if err := ctx.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testcase.modify(t, dir)

			timeout := time.After(5 * time.Second)
			if dl, ok := t.Deadline(); ok {
				timeout = time.After(time.Until(dl) - time.Second)
			}
			select {
			case <-ctx.Done():
				if cause := context.Cause(ctx); !errors.Is(cause, filewatch.ErrModified) {
					t.Errorf("unexpected cause: %v", cause)
				}
			case <-timeout:
				t.Fatal("context is not canceled")
			}
		})
	}
}

func TestUntilModifyContext_Errors(t *testing.T) {
	t.Run("empty path is ignored", func(t *testing.T) {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), "")
		if err != nil {
			t.Fatal(err)
		}
		if err := ctx.Err(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		cancel()
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("cancel does not cancel: %v", ctx.Err())
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, _, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(t.TempDir(), "missing.yaml"),
		)
		if err == nil {
			t.Error("no error")
		}
	})
}
