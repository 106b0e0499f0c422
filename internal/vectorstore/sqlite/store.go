// Package sqlite is the durable index provider: one directory per session id
// under a data directory, with passages and their embedding vectors in a
// single SQLite database. A persisted index can be reopened by session id
// without re-embedding, surviving process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

const dbFileName = "index.db"

const schema = `
CREATE TABLE IF NOT EXISTS passages (
	seq    INTEGER PRIMARY KEY,
	text   TEXT NOT NULL,
	origin TEXT NOT NULL,
	page   INTEGER,
	vector BLOB NOT NULL
);`

// Provider stores each session's index under <dataDir>/<session_id>/index.db.
type Provider struct {
	dataDir  string
	embedder domain.Embedder
}

func NewProvider(dataDir string, embedder domain.Embedder) (*Provider, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "vecdb")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Provider{dataDir: dataDir, embedder: embedder}, nil
}

func (p *Provider) Name() string { return "sqlite" }

// Build embeds every passage and writes the index in one transaction under a
// fresh session id. Any failure removes the session directory so no partial
// index is left behind.
func (p *Provider) Build(ctx context.Context, passages []domain.Passage) (vectorstore.Index, error) {
	id := uuid.NewString()
	dir := filepath.Join(p.dataDir, id)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	idx, err := p.build(ctx, id, dir, passages)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return idx, nil
}

func (p *Provider) build(ctx context.Context, id, dir string, passages []domain.Passage) (*index, error) {
	db, err := openDB(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	for _, passage := range passages {
		vec, err := p.embedder.Embed(ctx, passage.Text)
		if err != nil {
			_ = tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("embedding passage %d: %w", passage.Seq, err)
		}
		var page sql.NullInt64
		if passage.Page != nil {
			page = sql.NullInt64{Int64: int64(*passage.Page), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO passages (seq, text, origin, page, vector)
			VALUES (?, ?, ?, ?, ?)`,
			passage.Seq, passage.Text, passage.Origin, page, vectorToBytes(vec))
		if err != nil {
			_ = tx.Rollback()
			db.Close()
			return nil, fmt.Errorf("inserting passage %d: %w", passage.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("committing index: %w", err)
	}
	return &index{id: id, dir: dir, db: db, embedder: p.embedder}, nil
}

// Open rehydrates a persisted index without touching the embedding service.
func (p *Provider) Open(sessionID string) (vectorstore.Index, error) {
	dir := filepath.Join(p.dataDir, sessionID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	db, err := openDB(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	return &index{id: sessionID, dir: dir, db: db, embedder: p.embedder}, nil
}

// List enumerates persisted session ids.
func (p *Provider) List() ([]string, error) {
	entries, err := os.ReadDir(p.dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

type index struct {
	id       string
	dir      string
	db       *sql.DB
	embedder domain.Embedder
}

func (x *index) SessionID() string { return x.id }

// Query embeds the question once, then brute-force scans the stored vectors.
// Raw scores are L2 distances between (near-)unit vectors.
func (x *index) Query(ctx context.Context, text string, k int) ([]domain.ScoredPassage, error) {
	if k <= 0 {
		k = 10
	}
	qv, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := x.db.QueryContext(ctx, `SELECT seq, text, origin, page, vector FROM passages`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredPassage
	for rows.Next() {
		var (
			passage domain.Passage
			page    sql.NullInt64
			blob    []byte
		)
		if err := rows.Scan(&passage.Seq, &passage.Text, &passage.Origin, &page, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		if page.Valid {
			n := int(page.Int64)
			passage.Page = &n
		}
		results = append(results, domain.ScoredPassage{
			Passage:  passage,
			RawScore: l2Distance(bytesToVector(blob), qv),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].RawScore < results[j].RawScore })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (x *index) Count() (int, error) {
	var n int
	if err := x.db.QueryRow(`SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

func (x *index) Peek() (domain.Passage, bool, error) {
	var (
		passage domain.Passage
		page    sql.NullInt64
	)
	err := x.db.QueryRow(`SELECT seq, text, origin, page FROM passages LIMIT 1`).
		Scan(&passage.Seq, &passage.Text, &passage.Origin, &page)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Passage{}, false, nil
	}
	if err != nil {
		return domain.Passage{}, false, fmt.Errorf("sampling passage: %w", err)
	}
	if page.Valid {
		n := int(page.Int64)
		passage.Page = &n
	}
	return passage, true, nil
}

// Destroy closes the handle and removes the whole session directory, so a
// later Open reports not-found.
func (x *index) Destroy() error {
	_ = x.db.Close()
	if err := os.RemoveAll(x.dir); err != nil {
		return fmt.Errorf("removing session directory: %w", err)
	}
	return nil
}

func (x *index) Close() error { return x.db.Close() }

// vectorToBytes packs a vector as little-endian float32s, halving storage
// without a measurable retrieval quality cost.
func vectorToBytes(vec []float64) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(f)))
	}
	return buf
}

func bytesToVector(data []byte) []float64 {
	vec := make([]float64, len(data)/4)
	for i := range vec {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return vec
}

func l2Distance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
