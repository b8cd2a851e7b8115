// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"certpress/internal/cache"
	"certpress/internal/config"
	"certpress/internal/database"
	"certpress/internal/render"
	"certpress/internal/session"
	"certpress/internal/store"
	"certpress/internal/token"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "certpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "certpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkey returns a Redis client on the test DB, skipping when
// Valkey is unavailable.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"editor:*", "export:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv bundles the live dependencies behind the handler groups.
type testEnv struct {
	db        *sql.DB
	valkey    *redis.Client
	tokens    *token.Manager
	users     *store.UserStore
	templates *store.TemplateStore
	students  *store.StudentStore
	sessions  *session.Store
	exports   *cache.ExportCache
	renderer  *render.Renderer
	cfg       *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)
	valkey := testValkey(t)

	tokens, err := token.NewManager([]byte("handler-test-secret"), "certpress-test", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	fonts, err := render.NewFontLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("font library: %v", err)
	}

	return &testEnv{
		db:        db,
		valkey:    valkey,
		tokens:    tokens,
		users:     store.NewUserStore(db),
		templates: store.NewTemplateStore(db),
		students:  store.NewStudentStore(db, []byte("handler-test-lookup")),
		sessions:  session.NewStore(valkey),
		exports:   cache.NewExportCache(valkey, time.Minute),
		renderer:  render.New(fonts, render.NewImageResolver(&http.Client{Timeout: time.Second}, "")),
		cfg: &config.Config{
			AdminEmails: []string{"admin@handler.test"},
			PublicURL:   "http://localhost:8080",
		},
	}
}

// doJSON performs a request against a handler with an optional JSON
// body and bearer token, returning the recorder. Tests mount handlers
// on a chi router so URL parameters resolve.
func doJSON(t *testing.T, handler http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func cleanTestUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, email := range emails {
			db.Exec(`DELETE FROM users WHERE email = $1`, email)
		}
	})
}

func cleanTestTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, name := range names {
			db.Exec(`DELETE FROM templates WHERE name = $1`, name)
		}
	})
}

func cleanTestStudents(t *testing.T, db *sql.DB, numbers ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, number := range numbers {
			db.Exec(`DELETE FROM students WHERE number = $1`, number)
		}
	})
}
