package mirror

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sadopc/dailyschedule/internal/apperr"
)

const snapshotVersion = 1

// Snapshot is the portable JSON form of the whole mirror.
type Snapshot struct {
	Version      int       `json:"version"`
	ExportDate   time.Time `json:"exportDate"`
	Categories   []Doc     `json:"categories"`
	Schedules    []Doc     `json:"schedules"`
	TimeTracking []Doc     `json:"timeTracking"`
}

func (s *Snapshot) docs(col Collection) *[]Doc {
	switch col {
	case Categories:
		return &s.Categories
	case Schedules:
		return &s.Schedules
	}
	return &s.TimeTracking
}

// Export writes every collection to w as an indented JSON snapshot.
func (c *Client) Export(w io.Writer) error {
	snap := Snapshot{Version: snapshotVersion, ExportDate: c.now().UTC()}
	for _, col := range Collections {
		docs, err := c.All(col)
		if err != nil {
			return err
		}
		if docs == nil {
			docs = []Doc{}
		}
		*snap.docs(col) = docs
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces the mirror contents with the snapshot read from r.
// Document ids are kept so references between documents stay valid.
// Nothing is changed if the snapshot is malformed.
func (c *Client) Import(r io.Reader) error {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return apperr.Invalid("snapshot", "malformed snapshot: %v", err)
	}
	if snap.Version > snapshotVersion {
		return apperr.Invalid("snapshot", "unsupported snapshot version %d", snap.Version)
	}
	for _, col := range Collections {
		for i, d := range *snap.docs(col) {
			if d.ID() == "" {
				return apperr.Invalid("snapshot", "%s document %d has no id", col, i)
			}
		}
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		if err := clearTx(tx); err != nil {
			return err
		}
		for _, col := range Collections {
			b := tx.Bucket([]byte(col))
			for _, d := range *snap.docs(col) {
				data, err := json.Marshal(d)
				if err != nil {
					return fmt.Errorf("encode %s document: %w", col, err)
				}
				if err := b.Put([]byte(d.ID()), data); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
