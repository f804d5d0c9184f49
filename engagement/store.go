package engagement

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrInvalid is returned for writes carrying unknown types or bad counts.
var ErrInvalid = errors.New("invalid engagement event")

// Store persists engagement events in SQLite.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// NewStore opens (and creates if needed) the engagement database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open engagement db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.loadSalt(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS content_meta (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_id INTEGER NOT NULL REFERENCES content_meta(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS shares (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_id INTEGER NOT NULL REFERENCES content_meta(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			session_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_id INTEGER NOT NULL REFERENCES content_meta(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			count INTEGER NOT NULL,
			section TEXT,
			session_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_views_content ON views(content_id, session_id);
		CREATE INDEX IF NOT EXISTS idx_shares_content ON shares(content_id, session_id);
		CREATE INDEX IF NOT EXISTS idx_shares_created ON shares(created_at);
		CREATE INDEX IF NOT EXISTS idx_reactions_content ON reactions(content_id, session_id);
		CREATE INDEX IF NOT EXISTS idx_reactions_created ON reactions(created_at);
		CREATE INDEX IF NOT EXISTS idx_content_meta_created ON content_meta(type, created_at);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		if version, err = strconv.Atoi(verStr); err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// loadSalt loads or generates the per-installation salt for session ids.
func (s *Store) loadSalt() error {
	salt, err := s.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := s.SetSetting("hash_salt", salt); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = salt
	return nil
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// contentID connects to the content_meta row for c, creating it first
// when no event has referenced the slug yet.
func (s *Store) contentID(ctx context.Context, tx *sql.Tx, c Content) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT INTO content_meta (slug, type, title, created_at)
		VALUES (?, ?, ?, ?) ON CONFLICT(slug) DO NOTHING`,
		c.Slug, string(c.Type), c.Title, s.now().UnixMilli()); err != nil {
		return 0, fmt.Errorf("create content meta: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM content_meta WHERE slug = ?`, c.Slug).Scan(&id); err != nil {
		return 0, fmt.Errorf("connect content meta: %w", err)
	}
	return id, nil
}

func validContent(c Content) error {
	if c.Slug == "" || !c.Type.Valid() {
		return fmt.Errorf("%w: content %q of type %q", ErrInvalid, c.Slug, c.Type)
	}
	return nil
}

// RecordView appends a view by sessionID.
func (s *Store) RecordView(ctx context.Context, c Content, sessionID string) error {
	if err := validContent(c); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.contentID(ctx, tx, c)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO views (content_id, session_id, created_at) VALUES (?, ?, ?)`,
			id, sessionID, s.now().UnixMilli())
		return err
	})
}

// RecordShare appends a share through channel by sessionID.
func (s *Store) RecordShare(ctx context.Context, c Content, channel ShareType, sessionID string) error {
	if err := validContent(c); err != nil {
		return err
	}
	if !channel.Valid() {
		return fmt.Errorf("%w: share type %q", ErrInvalid, channel)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.contentID(ctx, tx, c)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO shares (content_id, type, session_id, created_at) VALUES (?, ?, ?, ?)`,
			id, string(channel), sessionID, s.now().UnixMilli())
		return err
	})
}

// RecordReaction appends a batched reaction. Count must be positive.
func (s *Store) RecordReaction(ctx context.Context, c Content, r Reaction) error {
	if err := validContent(c); err != nil {
		return err
	}
	if !r.Type.Valid() || r.Count < 1 {
		return fmt.Errorf("%w: reaction %q x%d", ErrInvalid, r.Type, r.Count)
	}
	var section sql.NullString
	if r.Section != "" {
		section = sql.NullString{String: r.Section, Valid: true}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.contentID(ctx, tx, c)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO reactions (content_id, type, count, section, session_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, string(r.Type), r.Count, section, r.SessionID, s.now().UnixMilli())
		return err
	})
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) breakdown(ctx context.Context, query string, args ...any) (ReactionsDetail, error) {
	var d ReactionsDetail
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return d, err
		}
		d.Add(ReactionType(typ), n)
	}
	return d, rows.Err()
}

// AggregateCounts returns the totals for slug. Unknown slugs yield zeros.
func (s *Store) AggregateCounts(ctx context.Context, slug string) (Meta, error) {
	var m Meta
	views, err := s.count(ctx, `SELECT COUNT(*) FROM views v
		JOIN content_meta c ON c.id = v.content_id WHERE c.slug = ?`, slug)
	if err != nil {
		return m, fmt.Errorf("count views: %w", err)
	}
	shares, err := s.count(ctx, `SELECT COUNT(*) FROM shares sh
		JOIN content_meta c ON c.id = sh.content_id WHERE c.slug = ?`, slug)
	if err != nil {
		return m, fmt.Errorf("count shares: %w", err)
	}
	detail, err := s.ReactionBreakdown(ctx, slug)
	if err != nil {
		return m, err
	}
	m.Views = views
	m.Shares = shares
	m.ReactionsDetail = detail
	m.Reactions = detail.Total()
	return m, nil
}

// ReactionBreakdown sums reaction counts per type for slug.
func (s *Store) ReactionBreakdown(ctx context.Context, slug string) (ReactionsDetail, error) {
	d, err := s.breakdown(ctx, `SELECT r.type, SUM(r.count) FROM reactions r
		JOIN content_meta c ON c.id = r.content_id WHERE c.slug = ? GROUP BY r.type`, slug)
	if err != nil {
		return d, fmt.Errorf("reaction breakdown: %w", err)
	}
	return d, nil
}

// SessionReactionBreakdown sums the reactions sessionID gave slug per type.
func (s *Store) SessionReactionBreakdown(ctx context.Context, slug, sessionID string) (ReactionsDetail, error) {
	d, err := s.breakdown(ctx, `SELECT r.type, SUM(r.count) FROM reactions r
		JOIN content_meta c ON c.id = r.content_id
		WHERE c.slug = ? AND r.session_id = ? GROUP BY r.type`, slug, sessionID)
	if err != nil {
		return d, fmt.Errorf("session reaction breakdown: %w", err)
	}
	return d, nil
}

// SessionShareCount counts the shares sessionID made of slug.
func (s *Store) SessionShareCount(ctx context.Context, slug, sessionID string) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM shares sh
		JOIN content_meta c ON c.id = sh.content_id
		WHERE c.slug = ? AND sh.session_id = ?`, slug, sessionID)
	if err != nil {
		return 0, fmt.Errorf("session share count: %w", err)
	}
	return n, nil
}

// SessionViewCount counts the views sessionID made of slug.
func (s *Store) SessionViewCount(ctx context.Context, slug, sessionID string) (int, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM views v
		JOIN content_meta c ON c.id = v.content_id
		WHERE c.slug = ? AND v.session_id = ?`, slug, sessionID)
	if err != nil {
		return 0, fmt.Errorf("session view count: %w", err)
	}
	return n, nil
}

// SectionBreakdown groups the reactions of slug by document section.
// Reactions without a section are not included.
func (s *Store) SectionBreakdown(ctx context.Context, slug string) (map[string]SectionMeta, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.section, r.type, SUM(r.count) FROM reactions r
		JOIN content_meta c ON c.id = r.content_id
		WHERE c.slug = ? AND r.section IS NOT NULL AND r.section != ''
		GROUP BY r.section, r.type`, slug)
	if err != nil {
		return nil, fmt.Errorf("section breakdown: %w", err)
	}
	defer rows.Close()

	out := make(map[string]SectionMeta)
	for rows.Next() {
		var section, typ string
		var n int
		if err := rows.Scan(&section, &typ, &n); err != nil {
			return nil, fmt.Errorf("scan section breakdown: %w", err)
		}
		m := out[section]
		m.ReactionsDetail.Add(ReactionType(typ), n)
		out[section] = m
	}
	return out, rows.Err()
}

// AllContentMeta returns view and share totals for every known slug.
func (s *Store) AllContentMeta(ctx context.Context) (map[string]Counts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.slug,
		(SELECT COUNT(*) FROM views v WHERE v.content_id = c.id),
		(SELECT COUNT(*) FROM shares sh WHERE sh.content_id = c.id)
		FROM content_meta c`)
	if err != nil {
		return nil, fmt.Errorf("list content meta: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Counts)
	for rows.Next() {
		var slug string
		var c Counts
		if err := rows.Scan(&slug, &c.Views, &c.Shares); err != nil {
			return nil, fmt.Errorf("scan content meta: %w", err)
		}
		out[slug] = c
	}
	return out, rows.Err()
}

// RecentActivity merges the reactions and shares of the last window across
// all content, newest first, capped at limit.
func (s *Store) RecentActivity(ctx context.Context, window time.Duration, limit int) ([]Activity, error) {
	if limit <= 0 {
		return []Activity{}, nil
	}
	cutoff := s.now().Add(-window).UnixMilli()

	var (
		wg        sync.WaitGroup
		reactions []Activity
		shares    []Activity
		rErr      error
		sErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reactions, rErr = s.activity(ctx, ActivityReaction, `SELECT r.type, r.count, COALESCE(r.section, ''),
			c.slug, c.type, c.title, r.created_at
			FROM reactions r JOIN content_meta c ON c.id = r.content_id
			WHERE r.created_at >= ? ORDER BY r.created_at DESC, r.id DESC LIMIT ?`, cutoff, limit)
	}()
	go func() {
		defer wg.Done()
		shares, sErr = s.activity(ctx, ActivityShare, `SELECT sh.type, 1, '',
			c.slug, c.type, c.title, sh.created_at
			FROM shares sh JOIN content_meta c ON c.id = sh.content_id
			WHERE sh.created_at >= ? ORDER BY sh.created_at DESC, sh.id DESC LIMIT ?`, cutoff, limit)
	}()
	wg.Wait()
	if err := errors.Join(rErr, sErr); err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	merged := make([]Activity, 0, len(reactions)+len(shares))
	merged = append(merged, reactions...)
	merged = append(merged, shares...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (s *Store) activity(ctx context.Context, kind ActivityType, query string, args ...any) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a := Activity{ActivityType: kind}
		var contentType string
		var created int64
		if err := rows.Scan(&a.Type, &a.Count, &a.Section, &a.Slug, &contentType, &a.Title, &created); err != nil {
			return nil, err
		}
		a.ContentType = ContentType(contentType)
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// NewestContent returns up to limit items of type t first seen within
// window, newest first.
func (s *Store) NewestContent(ctx context.Context, t ContentType, window time.Duration, limit int) ([]ContentRef, error) {
	cutoff := s.now().Add(-window).UnixMilli()
	rows, err := s.db.QueryContext(ctx, `SELECT slug, type, title, created_at FROM content_meta
		WHERE type = ? AND created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		string(t), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("newest content: %w", err)
	}
	defer rows.Close()

	out := []ContentRef{}
	for rows.Next() {
		var ref ContentRef
		var typ string
		var created int64
		if err := rows.Scan(&ref.Slug, &typ, &ref.Title, &created); err != nil {
			return nil, fmt.Errorf("scan newest content: %w", err)
		}
		ref.Type = ContentType(typ)
		ref.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, ref)
	}
	return out, rows.Err()
}

// ContentDetail combines the aggregate, the per-session share and the
// per-section breakdown of slug. The reads run concurrently.
func (s *Store) ContentDetail(ctx context.Context, slug, sessionID string) (*ContentDetail, error) {
	detail := &ContentDetail{MetaSection: map[string]SectionMeta{}}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				setErr(err)
			}
		}()
	}

	run(func() (err error) {
		detail.Meta, err = s.AggregateCounts(ctx, slug)
		return err
	})
	run(func() (err error) {
		detail.MetaUser.ReactionsDetail, err = s.SessionReactionBreakdown(ctx, slug, sessionID)
		return err
	})
	run(func() (err error) {
		detail.MetaUser.Shares, err = s.SessionShareCount(ctx, slug, sessionID)
		return err
	})
	run(func() (err error) {
		detail.MetaUser.Views, err = s.SessionViewCount(ctx, slug, sessionID)
		return err
	})
	run(func() error {
		sections, err := s.SectionBreakdown(ctx, slug)
		if err == nil {
			detail.MetaSection = sections
		}
		return err
	})

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return detail, nil
}
