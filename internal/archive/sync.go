package archive

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/halvard/skein/internal/canvasdoc"
)

// Import validates a document payload and stores it under the given name.
// Malformed documents are rejected, never stored.
func Import(store Store, name, notes, payload string) (*DocRow, error) {
	doc, err := canvasdoc.Deserialize(payload)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(doc.Nodes))
	var names []string
	for _, n := range doc.Nodes {
		if !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
	}

	row := DocRow{
		Name:      name,
		Notes:     notes,
		Checksum:  Checksum(payload),
		NodeNames: names,
		NodeCount: len(doc.Nodes),
	}
	if err := store.Save(row, payload); err != nil {
		return nil, err
	}
	return &row, nil
}

// Sync walks the exchange directory and imports every new or changed *.json
// document. Entries already archived under other names are left alone; sync
// never deletes.
func Sync(db *DB, dir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := importFile(db, path, logger); err != nil {
			logger.Warn("sync: import failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// importFile imports one exchange file, skipping unchanged payloads.
func importFile(db *DB, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := docName(path)
	payload := string(data)

	stored, err := db.GetChecksum(name)
	if err != nil {
		return err
	}
	if stored == Checksum(payload) {
		return nil
	}

	if _, err := Import(db, name, "", payload); err != nil {
		return err
	}
	logger.Debug("sync: imported", slog.String("name", name))
	return nil
}

// docName derives the archive name from an exchange file path.
func docName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
