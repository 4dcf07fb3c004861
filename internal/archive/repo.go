package archive

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/halvard/skein/internal/apperr"
)

// DocRow represents a row in the documents table.
type DocRow struct {
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	Checksum  string    `json:"checksum"`
	NodeNames []string  `json:"nodeNames"`
	NodeCount int       `json:"nodeCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

// Checksum returns the hex-encoded SHA-256 digest of a document payload.
func Checksum(payload string) string {
	h := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(h[:])
}

// Save inserts or replaces a document and its FTS entry within a transaction.
func (db *DB) Save(row DocRow, payload string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	namesJSON, _ := json.Marshal(row.NodeNames)
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO documents (name, notes, checksum, node_names, node_count, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			notes      = excluded.notes,
			checksum   = excluded.checksum,
			node_names = excluded.node_names,
			node_count = excluded.node_count,
			payload    = excluded.payload,
			updated_at = excluded.updated_at
	`, row.Name, row.Notes, row.Checksum, string(namesJSON), row.NodeCount, payload, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("archive: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, row.Name, row.Notes, strings.Join(row.NodeNames, " ")); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns a document row and its payload.
func (db *DB) Get(name string) (*DocRow, string, error) {
	var (
		row       DocRow
		namesJSON string
		payload   string
	)
	err := db.conn.QueryRow(`
		SELECT name, notes, checksum, node_names, node_count, payload, updated_at
		FROM documents WHERE name = ?
	`, name).Scan(&row.Name, &row.Notes, &row.Checksum, &namesJSON, &row.NodeCount, &payload, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.NotFound("document %q", name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("archive: get document: %w", err)
	}
	_ = json.Unmarshal([]byte(namesJSON), &row.NodeNames)
	return &row, payload, nil
}

// List returns paginated document rows (payloads excluded) plus the total
// count.
func (db *DB) List(limit, offset int) ([]DocRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("archive: count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT name, notes, checksum, node_names, node_count, updated_at
		FROM documents
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("archive: list: %w", err)
	}
	defer rows.Close()

	var out []DocRow
	for rows.Next() {
		var (
			r         DocRow
			namesJSON string
		)
		if err := rows.Scan(&r.Name, &r.Notes, &r.Checksum, &namesJSON, &r.NodeCount, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(namesJSON), &r.NodeNames)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Delete removes a document and its FTS entry.
func (db *DB) Delete(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, name)
	res, err := tx.Exec(`DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("archive: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("document %q", name)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// not found.
func (db *DB) GetChecksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE name = ?`, name).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}
