package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobsby23/Team-Chat/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	type             TEXT NOT NULL,
	invite_code      TEXT NOT NULL UNIQUE,
	encryption_key   TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at       TIMESTAMPTZ,
	max_participants INT NOT NULL DEFAULT 50,
	is_active        BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS messages (
	id         UUID PRIMARY KEY,
	room       TEXT NOT NULL,
	sender     TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	reactions  JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS messages_room_created_idx ON messages (room, created_at);
CREATE INDEX IF NOT EXISTS messages_expires_idx ON messages (expires_at);
`

// Postgres is the pgx-backed store.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// PGConfig describes a Postgres connection.
type PGConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// NewPostgres connects, bootstraps the schema, and seeds the public room.
func NewPostgres(ctx context.Context, cfg PGConfig, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p := &Postgres{pool: pool, logger: logger}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg PGConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return err
	}

	// Seed the default public room once.
	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (id, name, type, invite_code)
		VALUES ($1, 'Public Room', $2, $3)
		ON CONFLICT (invite_code) DO NOTHING`,
		uuid.NewString(), model.RoomTypePublic, model.PublicRoomCode,
	)
	return err
}

// List returns non-expired messages for a room in chronological order.
func (p *Postgres) List(ctx context.Context, room string, limit int) ([]model.Message, error) {
	q := `
		SELECT id, sender, content, created_at, expires_at, reactions
		FROM messages
		WHERE room = $1 AND expires_at > now()
		ORDER BY created_at DESC`
	args := []any{room}
	if limit > 0 {
		q += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// Query returns newest first; callers expect chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Insert stores a new message.
func (p *Postgres) Insert(ctx context.Context, room, sender, content string, ttl time.Duration) (model.Message, error) {
	now := time.Now()
	msg := model.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: now,
		ExpiresAt: now.Add(ttl),
		Reactions: map[string][]string{},
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO messages (id, room, sender, content, created_at, expires_at, reactions)
		VALUES ($1, $2, $3, $4, $5, $6, '{}')`,
		msg.ID, room, sender, content, msg.Timestamp, msg.ExpiresAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Get returns a message by id.
func (p *Postgres) Get(ctx context.Context, id string) (model.Message, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, sender, content, created_at, expires_at, reactions
		FROM messages
		WHERE id = $1 AND expires_at > now()`, id)

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Message{}, ErrNotFound
	}
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// UpdateReactions replaces a message's reaction map.
func (p *Postgres) UpdateReactions(ctx context.Context, id string, reactions map[string][]string) (model.Message, error) {
	clean := make(map[string][]string, len(reactions))
	for emoji, users := range reactions {
		if len(users) > 0 {
			clean[emoji] = users
		}
	}
	blob, err := json.Marshal(clean)
	if err != nil {
		return model.Message{}, fmt.Errorf("encode reactions: %w", err)
	}

	row := p.pool.QueryRow(ctx, `
		UPDATE messages SET reactions = $2
		WHERE id = $1 AND expires_at > now()
		RETURNING id, sender, content, created_at, expires_at, reactions`,
		id, blob,
	)

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Message{}, ErrNotFound
	}
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// DeleteExpired removes messages whose expiry is at or before the instant.
func (p *Postgres) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM messages WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CreateRoom stores a room.
func (p *Postgres) CreateRoom(ctx context.Context, room model.Room) (model.Room, error) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	room.IsActive = true

	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (id, name, type, invite_code, encryption_key, created_at, expires_at, max_participants, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)`,
		room.ID, room.Name, room.Type, room.InviteCode, room.EncryptionKey,
		room.CreatedAt, room.ExpiresAt, room.MaxParticipants,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.Room{}, ErrCodeExists
	}
	if err != nil {
		return model.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// FindByInviteCode looks up an active room.
func (p *Postgres) FindByInviteCode(ctx context.Context, code string) (model.Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, type, invite_code, COALESCE(encryption_key, ''), created_at, expires_at, max_participants, is_active
		FROM rooms
		WHERE invite_code = $1 AND is_active`, code)

	var room model.Room
	err := row.Scan(&room.ID, &room.Name, &room.Type, &room.InviteCode,
		&room.EncryptionKey, &room.CreatedAt, &room.ExpiresAt,
		&room.MaxParticipants, &room.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Room{}, ErrNotFound
	}
	if err != nil {
		return model.Room{}, fmt.Errorf("find room: %w", err)
	}

	if room.Expired(time.Now()) {
		return model.Room{}, ErrRoomExpired
	}
	return room, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var msg model.Message
	var blob []byte
	if err := row.Scan(&msg.ID, &msg.Sender, &msg.Content, &msg.Timestamp, &msg.ExpiresAt, &blob); err != nil {
		return model.Message{}, err
	}
	msg.Reactions = map[string][]string{}
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &msg.Reactions); err != nil {
			return model.Message{}, fmt.Errorf("decode reactions: %w", err)
		}
	}
	return msg, nil
}
