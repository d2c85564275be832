package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memomap/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when the requested memo does not exist.
var ErrNotFound = errors.New("repository: memo not found")

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		nickname TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS memos (
		id SERIAL PRIMARY KEY,
		uid TEXT NOT NULL UNIQUE,
		creator_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL DEFAULT '',
		visibility TEXT NOT NULL DEFAULT 'PRIVATE',
		created_ts TIMESTAMPTZ NOT NULL DEFAULT now(),
		location_name TEXT,
		location_lat DOUBLE PRECISION,
		location_lon DOUBLE PRECISION
	);
	CREATE TABLE IF NOT EXISTS memo_relations (
		memo_id INTEGER NOT NULL REFERENCES memos(id) ON DELETE CASCADE,
		related_memo_id INTEGER NOT NULL REFERENCES memos(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		PRIMARY KEY (memo_id, related_memo_id, type)
	);
	CREATE INDEX IF NOT EXISTS memos_located_idx ON memos (created_ts)
		WHERE location_lat IS NOT NULL AND location_lon IS NOT NULL;
`

const mapMemoColumns = `
	m.id,
	m.uid,
	m.creator_id,
	COALESCE(NULLIF(u.nickname, ''), u.username) AS creator_name,
	u.avatar_url,
	m.created_ts,
	m.content,
	m.location_name,
	m.location_lat,
	m.location_lon
`

// NewMemo is a memo row to be bulk inserted.
type NewMemo struct {
	UID        string
	CreatorID  int32
	Content    string
	Visibility string
	CreatedAt  time.Time
	Location   *models.Location
}

// Repository implements memo storage on PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables the service reads if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// ListMapMemos returns public, non-comment memos that carry a location, oldest first.
func (r *Repository) ListMapMemos(ctx context.Context) ([]*models.MapMemo, error) {
	sql := `
		SELECT` + mapMemoColumns + `
		FROM memos m
		JOIN users u ON u.id = m.creator_id
		WHERE m.location_name IS NOT NULL
			AND m.location_lat IS NOT NULL
			AND m.location_lon IS NOT NULL
			AND m.visibility = 'PUBLIC'
			AND NOT EXISTS (
				SELECT 1 FROM memo_relations rel
				WHERE rel.memo_id = m.id AND rel.type = 'COMMENT'
			)
		ORDER BY m.created_ts ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute map memo query: %w", err)
	}
	defer rows.Close()

	memos := make([]*models.MapMemo, 0)
	for rows.Next() {
		memo, err := scanMapMemo(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan memo: %w", err)
		}
		memos = append(memos, memo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return memos, nil
}

// GetMapMemo finds a public memo by its uid regardless of whether it has a location.
// Private memos are reported as ErrNotFound.
func (r *Repository) GetMapMemo(ctx context.Context, uid string) (*models.MapMemo, error) {
	sql := `
		SELECT` + mapMemoColumns + `
		FROM memos m
		JOIN users u ON u.id = m.creator_id
		WHERE m.uid = $1 AND m.visibility = 'PUBLIC'
	`

	memo, err := scanMapMemo(r.db.QueryRow(ctx, sql, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get memo: %w", err)
	}
	return memo, nil
}

// UpdateLocationName renames the location of a public memo. Coordinates are left untouched.
func (r *Repository) UpdateLocationName(ctx context.Context, uid, name string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE memos SET location_name = $2 WHERE uid = $1 AND visibility = 'PUBLIC'`, uid, name)
	if err != nil {
		return fmt.Errorf("repository: failed to update location name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertUser creates the user if needed and returns its id.
func (r *Repository) UpsertUser(ctx context.Context, username, nickname, avatarURL string) (int32, error) {
	sql := `
		INSERT INTO users (username, nickname, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
			SET nickname = EXCLUDED.nickname, avatar_url = EXCLUDED.avatar_url
		RETURNING id
	`
	var id int32
	if err := r.db.QueryRow(ctx, sql, username, nickname, avatarURL).Scan(&id); err != nil {
		return 0, fmt.Errorf("repository: failed to upsert user: %w", err)
	}
	return id, nil
}

// CopyMemos bulk inserts memos with COPY and returns the number of rows written.
func (r *Repository) CopyMemos(ctx context.Context, memos []NewMemo) (int64, error) {
	n, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"memos"},
		[]string{"uid", "creator_id", "content", "visibility", "created_ts", "location_name", "location_lat", "location_lon"},
		pgx.CopyFromSlice(len(memos), func(i int) ([]any, error) {
			m := memos[i]
			visibility := m.Visibility
			if visibility == "" {
				visibility = "PRIVATE"
			}
			createdAt := m.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			var name *string
			var lat, lon *float64
			if m.Location != nil {
				name, lat, lon = &m.Location.Name, &m.Location.Latitude, &m.Location.Longitude
			}
			return []any{m.UID, m.CreatorID, m.Content, visibility, createdAt, name, lat, lon}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy memos: %w", err)
	}
	return n, nil
}

// AddComment marks memoID as a comment on parentID.
func (r *Repository) AddComment(ctx context.Context, memoID, parentID int32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO memo_relations (memo_id, related_memo_id, type) VALUES ($1, $2, 'COMMENT') ON CONFLICT DO NOTHING`,
		memoID, parentID)
	if err != nil {
		return fmt.Errorf("repository: failed to add comment relation: %w", err)
	}
	return nil
}

func scanMapMemo(row pgx.Row) (*models.MapMemo, error) {
	var memo models.MapMemo
	var name *string
	var lat, lon *float64
	err := row.Scan(
		&memo.ID,
		&memo.Name,
		&memo.CreatorID,
		&memo.CreatorName,
		&memo.AvatarURL,
		&memo.CreateTime,
		&memo.Content,
		&name,
		&lat,
		&lon,
	)
	if err != nil {
		return nil, err
	}
	if name != nil || lat != nil || lon != nil {
		memo.Location = &models.Location{}
		if name != nil {
			memo.Location.Name = *name
		}
		if lat != nil {
			memo.Location.Latitude = *lat
		}
		if lon != nil {
			memo.Location.Longitude = *lon
		}
	}
	return &memo, nil
}
