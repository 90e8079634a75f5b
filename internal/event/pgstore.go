package event

import (
	"context"
	"embed"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// PGStore is a Postgres-backed Store used for durable archival and offline
// replay tooling. Live rooms append through MemoryStore; PGStore carries the
// same contract for logs that must survive the process.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPG connects a pool and ensures the schema exists.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, string(sqlBytes))
	return err
}

// Close releases the connection pool.
func (s *PGStore) Close() { s.pool.Close() }

// Append inserts one event. The primary key on (room_id, seq) rejects
// duplicate or forked sequences.
func (s *PGStore) Append(ctx context.Context, roomID string, ev Event) error {
	var display []byte
	if ev.Display != nil {
		b, err := json.Marshal(ev.Display)
		if err != nil {
			return err
		}
		display = b
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO room_events(room_id, seq, type, payload, display, recipients, at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, roomID, int64(ev.Seq), string(ev.Type), []byte(ev.Payload), display, ev.Recipients, ev.At)
	return err
}

// Since returns the room's events with seq > the given value, in order.
func (s *PGStore) Since(ctx context.Context, roomID string, seq uint64) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT seq, type, payload, display, recipients, at
          FROM room_events
         WHERE room_id = $1 AND seq > $2
         ORDER BY seq
    `, roomID, int64(seq))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev      Event
			seqVal  int64
			typ     string
			payload []byte
			display []byte
		)
		if err := rows.Scan(&seqVal, &typ, &payload, &display, &ev.Recipients, &ev.At); err != nil {
			return nil, err
		}
		ev.Seq = uint64(seqVal)
		ev.Type = Type(typ)
		ev.Payload = json.RawMessage(payload)
		if len(display) > 0 {
			var hint DisplayHint
			if err := json.Unmarshal(display, &hint); err != nil {
				return nil, err
			}
			ev.Display = &hint
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
