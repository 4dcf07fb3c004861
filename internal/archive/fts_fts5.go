//go:build sqlite_fts5

package archive

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			name UNINDEXED,
			notes,
			node_names,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, name, notes, nodeNames string) error {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE name = ?`, name)
	_, err := tx.Exec(`INSERT INTO documents_fts (name, notes, node_names) VALUES (?, ?, ?)`,
		name, notes, nodeNames)
	if err != nil {
		return fmt.Errorf("archive: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, name string) {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE name = ?`, name)
}

// Search performs an FTS5 full-text search over document names and notes.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT name,
		       snippet(documents_fts, 1, '<b>', '</b>', '...', 64)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
