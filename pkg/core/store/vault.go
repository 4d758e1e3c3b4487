package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"equity_insight/pkg/core/snapshot"
)

// Vault is a hybrid snapshot store: DB primary, file system fallback.
// If pool is nil every operation uses the file directory.
type Vault struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewVault creates a vault. An empty dir defaults to .cache/snapshots when no
// pool is available.
func NewVault(pool *pgxpool.Pool, dir string) *Vault {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "snapshots")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("snapshot vault dir not created")
		}
	}
	return &Vault{pool: pool, fileDir: dir}
}

// codePattern bounds the company codes the vault accepts. The code becomes a
// filename in the fallback backend, so path separators must never pass.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Entry is one stored snapshot plus bookkeeping.
type Entry struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Put stores a validated snapshot under its company code, replacing any
// previous upload for the same code. payload is the canonical document the
// snapshot was decoded from.
func (v *Vault) Put(ctx context.Context, snap *snapshot.Snapshot, payload []byte) (*Entry, error) {
	if !codePattern.MatchString(snap.Code) {
		return nil, fmt.Errorf("invalid company code %q", snap.Code)
	}

	entry := &Entry{
		ID:       uuid.NewString(),
		Code:     snap.Code,
		Name:     snap.Name(),
		StoredAt: time.Now().UTC(),
		Payload:  json.RawMessage(payload),
	}

	if v.pool != nil {
		_, err := v.pool.Exec(ctx, `
			INSERT INTO snapshots (id, code, name, payload, stored_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO UPDATE
			SET id = EXCLUDED.id, name = EXCLUDED.name,
			    payload = EXCLUDED.payload, stored_at = EXCLUDED.stored_at`,
			entry.ID, entry.Code, entry.Name, entry.Payload, entry.StoredAt)
		if err != nil {
			return nil, fmt.Errorf("store snapshot %s: %w", entry.Code, err)
		}
		return entry, nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode vault entry: %w", err)
	}
	if err := os.WriteFile(v.filePath(entry.Code), data, 0644); err != nil {
		return nil, fmt.Errorf("write vault entry %s: %w", entry.Code, err)
	}
	return entry, nil
}

// GetByCode loads and re-validates the stored snapshot for a company code.
func (v *Vault) GetByCode(ctx context.Context, code string) (*snapshot.Snapshot, error) {
	payload, err := v.payloadByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.Load(payload)
	if err != nil {
		return nil, fmt.Errorf("decode stored snapshot %s: %w", code, err)
	}
	return snap, nil
}

func (v *Vault) payloadByCode(ctx context.Context, code string) ([]byte, error) {
	if !codePattern.MatchString(code) {
		return nil, fmt.Errorf("invalid company code %q", code)
	}

	if v.pool != nil {
		var payload []byte
		err := v.pool.QueryRow(ctx,
			`SELECT payload FROM snapshots WHERE code = $1`, code).Scan(&payload)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s not found: %w", code, err)
		}
		return payload, nil
	}

	data, err := os.ReadFile(v.filePath(code))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s not found: %w", code, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode vault entry %s: %w", code, err)
	}
	return entry.Payload, nil
}

// List returns bookkeeping rows for every stored snapshot, without payloads.
func (v *Vault) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	if v.pool != nil {
		rows, err := v.pool.Query(ctx,
			`SELECT id, code, name, stored_at FROM snapshots ORDER BY stored_at DESC`)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.StoredAt); err != nil {
				return nil, fmt.Errorf("scan snapshot row: %w", err)
			}
			entries = append(entries, e)
		}
		return entries, rows.Err()
	}

	files, err := os.ReadDir(v.fileDir)
	if err != nil {
		return nil, fmt.Errorf("list vault dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(v.fileDir, f.Name()))
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		e.Payload = nil
		entries = append(entries, e)
	}
	return entries, nil
}

func (v *Vault) filePath(code string) string {
	return filepath.Join(v.fileDir, code+".json")
}
