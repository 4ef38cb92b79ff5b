package history_sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	// https://github.com/mattn/go-sqlite3#connection-string
	opts := []string{
		"_journal_mode=WAL",
		"_synchronous=NORMAL",
		"_busy_timeout=5000",
	}

	db, err := sql.Open("sqlite3", path+"?"+strings.Join(opts, "&"))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		create table if not exists notifications (
			id integer primary key autoincrement,
			kind text not null,
			workspace text not null,
			repo_slug text not null,
			title text not null,
			message text not null,
			url text not null default '',
			created integer not null -- unix nanos
		);

		create index if not exists notifications_created on notifications (created);
	`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Notify(ctx context.Context, ev domain.NotificationEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into notifications (kind, workspace, repo_slug, title, message, url, created)
		values (?, ?, ?, ?, ?, ?, ?);
	`, string(ev.Kind), ev.Workspace, ev.RepoSlug, ev.Title, ev.Message, ev.URL, at.UnixNano())
	return err
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.NotificationEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		select kind, workspace, repo_slug, title, message, url, created
		from notifications
		order by created desc, id desc
		limit ?;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NotificationEvent
	for rows.Next() {
		var (
			ev      domain.NotificationEvent
			kind    string
			created int64
		)
		if err := rows.Scan(&kind, &ev.Workspace, &ev.RepoSlug, &ev.Title, &ev.Message, &ev.URL, &created); err != nil {
			return nil, err
		}
		ev.Kind = domain.NotificationKind(kind)
		ev.At = time.Unix(0, created)
		out = append(out, ev)
	}
	return out, rows.Err()
}
