package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

type cliTestEnv struct {
	dataDir string
	backend string
	envFile string
}

func setupCLITestEnv(t *testing.T, backend string) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"DATA_PATH", "STORAGE_BACKEND", "CONFIG_FILE", "LOG_FORMAT", "ENV"} {
		t.Setenv(key, "")
	}
	return &cliTestEnv{
		dataDir: filepath.Join(base, "data"),
		backend: backend,
		envFile: filepath.Join(base, "missing.env"),
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--data", e.dataDir,
		"--backend", e.backend,
		"--env-file", e.envFile,
		"--no-color",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("bookkeeper %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestSeedAndRead(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			env := setupCLITestEnv(t, backend)

			out := env.mustRun(t, "seed")
			if !strings.Contains(out, "Seeded 3 rows over 1 days") {
				t.Fatalf("unexpected seed output: %s", out)
			}

			if _, err := env.run(t, "seed"); err == nil {
				t.Fatal("expected second seed without --force to fail")
			}

			out = env.mustRun(t, "books")
			for _, want := range []string{"Learning Spark", "Personal Finance 101", "finished", "in progress"} {
				if !strings.Contains(out, want) {
					t.Errorf("books output missing %q:\n%s", want, out)
				}
			}

			out = env.mustRun(t, "books", "--author", "Alfred Mill")
			if strings.Contains(out, "Learning Spark") || !strings.Contains(out, "Personal Finance 101") {
				t.Errorf("author filter not applied:\n%s", out)
			}

			out = env.mustRun(t, "books", "--overview", "--year-max", "1950")
			if !strings.Contains(out, "Publishing Company") || !strings.Contains(out, "Helikon") || strings.Contains(out, "Adams Media") {
				t.Errorf("overview or year filter wrong:\n%s", out)
			}

			out = env.mustRun(t, "history", "jules-s-damji-learning-spark")
			if !strings.Contains(out, "2023-06-10") || !strings.Contains(out, "2023-03-31") {
				t.Errorf("history missing days:\n%s", out)
			}

			if _, err := env.run(t, "history", "no-such-book"); err == nil {
				t.Error("expected history of unknown book to fail")
			}

			out = env.mustRun(t, "timeline", "--slug", "alfred-mill-personal-finance-101")
			if !strings.Contains(out, "100") {
				t.Errorf("timeline missing page count:\n%s", out)
			}

			out = env.mustRun(t, "stats")
			if !strings.Contains(out, "Books: 3") {
				t.Errorf("stats output wrong:\n%s", out)
			}
		})
	}
}

func TestBooks_InvalidState(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)

	if _, err := env.run(t, "books", "--state", "abandoned"); err == nil {
		t.Fatal("expected invalid state to fail")
	}
}

func TestExportImport(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)
	env.mustRun(t, "seed")

	backupPath := filepath.Join(t.TempDir(), "backup.yaml")
	env.mustRun(t, "export", "--format", "yaml", "--output", backupPath)

	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(data), "marai-sandor-egy-polgar-vallomasai") {
		t.Fatalf("backup missing rows:\n%s", data)
	}

	out := env.mustRun(t, "--user", "restored", "import", backupPath, "--dry-run")
	if !strings.Contains(out, "Would import 3 rows over 1 days") {
		t.Fatalf("unexpected dry run output: %s", out)
	}

	env.mustRun(t, "--user", "restored", "import", backupPath)
	out = env.mustRun(t, "--user", "restored", "books")
	if !strings.Contains(out, "Learning Spark") {
		t.Errorf("imported books missing:\n%s", out)
	}
}

func TestMigrate(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)
	env.mustRun(t, "seed")

	out := env.mustRun(t, "migrate", "--to", config.BackendBadger)
	if !strings.Contains(out, "Migrated 1 users, 1 days, 3 rows") {
		t.Fatalf("unexpected migrate output: %s", out)
	}

	env.backend = config.BackendBadger
	out = env.mustRun(t, "books")
	if !strings.Contains(out, "Egy polgar vallomasai") {
		t.Errorf("migrated books missing:\n%s", out)
	}

	if _, err := env.run(t, "migrate", "--to", config.BackendBadger); err == nil {
		t.Error("expected migrate onto itself to fail")
	}
}

func TestWriteRefusedWhileLocked(t *testing.T) {
	env := setupCLITestEnv(t, config.BackendSQLite)

	lock, err := store.AcquireWriterLock(filepath.Join(env.dataDir, "bookkeeper.lock"))
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, err = env.run(t, "seed")
	if err == nil || !strings.Contains(err.Error(), "in use by another writer") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestParseDayFlag(t *testing.T) {
	if d, err := parseDayFlag("from", ""); err != nil || !d.IsZero() {
		t.Fatalf("empty flag: %v %v", d, err)
	}
	if _, err := parseDayFlag("from", "2024-13-01"); err == nil {
		t.Fatal("expected invalid date to fail")
	}
}
