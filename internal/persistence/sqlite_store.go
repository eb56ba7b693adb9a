package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vidpoint/vidpoint/internal/jobs"
	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/internal/transcribe"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteStore is the durable jobs.Store. Job rows double as the result
// cache: completed jobs are served straight from here without reprocessing.
type SQLiteStore struct {
	db *sql.DB
}

var _ jobs.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) CreateJobIfAbsent(ctx context.Context, job *jobs.ProcessingJob) (*jobs.ProcessingJob, bool, error) {
	if job == nil {
		return nil, false, fmt.Errorf("job is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (video_id, source_url, status, step, error, result_ref, started_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO NOTHING`,
		string(job.VideoID),
		job.SourceURL,
		string(job.Status),
		job.Step,
		job.Error,
		job.ResultRef,
		job.StartedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected > 0 {
		snapshot := *job
		return &snapshot, true, nil
	}
	existing, ok, err := s.GetJob(ctx, job.VideoID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, fmt.Errorf("job %s vanished after conflicting insert", job.VideoID)
	}
	return existing, false, nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, id source.VideoID) (*jobs.ProcessingJob, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT video_id, source_url, status, step, error, result_ref, started_at, updated_at
		 FROM jobs
		 WHERE video_id = ?`,
		string(id),
	)

	item, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*jobs.ProcessingJob, error) {
	var item jobs.ProcessingJob
	var videoID, status string
	if err := row.Scan(
		&videoID,
		&item.SourceURL,
		&status,
		&item.Step,
		&item.Error,
		&item.ResultRef,
		&item.StartedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.VideoID = source.VideoID(videoID)
	item.Status = jobs.Status(status)
	return &item, nil
}

// ListActiveJobs returns every job that has not reached a terminal state,
// oldest first. Startup recovery re-enqueues these.
func (s *SQLiteStore) ListActiveJobs(ctx context.Context) ([]*jobs.ProcessingJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT video_id, source_url, status, step, error, result_ref, started_at, updated_at
		 FROM jobs
		 WHERE status NOT IN (?, ?)
		 ORDER BY started_at ASC`,
		string(jobs.StatusCompleted),
		string(jobs.StatusFailed),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.ProcessingJob, 0)
	for rows.Next() {
		item, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *jobs.ProcessingJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
			source_url = ?,
			status = ?,
			step = ?,
			error = ?,
			result_ref = ?,
			updated_at = ?
		 WHERE video_id = ?`,
		job.SourceURL,
		string(job.Status),
		job.Step,
		job.Error,
		job.ResultRef,
		job.UpdatedAt.UTC(),
		string(job.VideoID),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return jobs.ErrUnknownJob
	}
	return nil
}

func (s *SQLiteStore) PutTranscript(ctx context.Context, transcript transcribe.Transcript) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (video_id, text, language)
		 VALUES (?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
			text=excluded.text,
			language=excluded.language`,
		string(transcript.VideoID),
		transcript.Text,
		transcript.Language,
	)
	return err
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, id source.VideoID) (transcribe.Transcript, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT text, language FROM transcripts WHERE video_id = ?`,
		string(id),
	)
	ret := transcribe.Transcript{VideoID: id}
	if err := row.Scan(&ret.Text, &ret.Language); err != nil {
		if err == sql.ErrNoRows {
			return transcribe.Transcript{}, false, nil
		}
		return transcribe.Transcript{}, false, err
	}
	return ret, true, nil
}

// PruneTerminalJobs deletes the oldest completed and failed jobs beyond
// keep, together with their cached transcripts.
func (s *SQLiteStore) PruneTerminalJobs(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(
		ctx,
		`SELECT video_id FROM jobs
		 WHERE status IN (?, ?)
		 ORDER BY updated_at DESC
		 LIMIT -1 OFFSET ?`,
		string(jobs.StatusCompleted),
		string(jobs.StatusFailed),
		keep,
	)
	if err != nil {
		return 0, err
	}
	victims := make([]string, 0)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		victims = append(victims, id)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var pruned int64
	for _, id := range victims {
		if _, err = tx.ExecContext(ctx, `DELETE FROM jobs WHERE video_id = ?`, id); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, id); err != nil {
			return 0, err
		}
		pruned++
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return pruned, nil
}
