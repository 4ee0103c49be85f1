// Package mirror is the offline copy of the user's data: JSON documents in
// a bbolt file, one bucket per collection.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/sadopc/dailyschedule/internal/apperr"
)

type Collection string

const (
	Categories Collection = "categories"
	Schedules  Collection = "schedules"
	Sessions   Collection = "timeTracking"
)

// Collections lists every bucket the mirror manages.
var Collections = []Collection{Categories, Schedules, Sessions}

var errMirrorLocked = errors.New("the offline mirror is in use by another process")

// Doc is one stored document. Its "id" field is the bucket key.
type Doc map[string]any

func (d Doc) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Client is a bbolt-backed document store.
type Client struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates or opens the mirror at path and makes sure every collection
// bucket exists.
func Open(path string) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}

	var fileMode fs.FileMode = 0o600
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) || errors.Is(err, bolt.ErrDatabaseOpen) {
			return nil, errMirrorLocked
		}
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, col := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(col)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Client{db: db, now: time.Now}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func bucket(tx *bolt.Tx, col Collection) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(col))
	if b == nil {
		return nil, apperr.NotFound("collection", string(col))
	}
	return b, nil
}

// Create stores v as a new document, assigning an id if it has none, and
// stamps createdAt and updatedAt. It returns the stored document.
func (c *Client) Create(col Collection, v any) (Doc, error) {
	doc, err := toDoc(v)
	if err != nil {
		return nil, err
	}
	if doc.ID() == "" {
		doc["id"] = uuid.NewString()
	}
	stamp := c.now().UTC().Format(time.RFC3339Nano)
	doc["createdAt"] = stamp
	doc["updatedAt"] = stamp
	return doc, c.putDoc(col, doc)
}

// Put stores v under its "id" field, replacing any existing document.
func (c *Client) Put(col Collection, v any) error {
	doc, err := toDoc(v)
	if err != nil {
		return err
	}
	if doc.ID() == "" {
		return apperr.Invalid("id", "document has no id")
	}
	return c.putDoc(col, doc)
}

func (c *Client) putDoc(col Collection, doc Doc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		return b.Put([]byte(doc.ID()), data)
	})
}

// Get decodes the document id into v.
func (c *Client) Get(col Collection, id string, v any) error {
	return c.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		data := b.Get([]byte(id))
		if data == nil {
			return apperr.NotFound(string(col), id)
		}
		return json.Unmarshal(data, v)
	})
}

// Update merges patch into the document id and refreshes updatedAt.
func (c *Client) Update(col Collection, id string, patch Doc) (Doc, error) {
	var merged Doc
	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		data := b.Get([]byte(id))
		if data == nil {
			return apperr.NotFound(string(col), id)
		}
		if err := json.Unmarshal(data, &merged); err != nil {
			return err
		}
		normalized, err := toDoc(patch)
		if err != nil {
			return err
		}
		for k, v := range normalized {
			merged[k] = v
		}
		merged["id"] = id
		merged["updatedAt"] = c.now().UTC().Format(time.RFC3339Nano)

		out, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), out)
	})
	return merged, err
}

func (c *Client) Delete(col Collection, id string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return apperr.NotFound(string(col), id)
		}
		return b.Delete([]byte(id))
	})
}

// All returns every document in col in key order.
func (c *Client) All(col Collection) ([]Doc, error) {
	var docs []Doc
	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, col)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var d Doc
			if err := json.Unmarshal(v, &d); err != nil {
				return err
			}
			docs = append(docs, d)
			return nil
		})
	})
	return docs, err
}

// Clear empties every collection.
func (c *Client) Clear() error {
	return c.db.Update(clearTx)
}

func clearTx(tx *bolt.Tx) error {
	for _, col := range Collections {
		if err := tx.DeleteBucket([]byte(col)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		if _, err := tx.CreateBucket([]byte(col)); err != nil {
			return err
		}
	}
	return nil
}

// Size describes one collection.
type Size struct {
	Count int
	Bytes int
}

// Stats returns the document count and encoded size of every collection.
func (c *Client) Stats() (map[Collection]Size, error) {
	stats := make(map[Collection]Size, len(Collections))
	err := c.db.View(func(tx *bolt.Tx) error {
		for _, col := range Collections {
			b, err := bucket(tx, col)
			if err != nil {
				return err
			}
			var s Size
			b.ForEach(func(_, v []byte) error {
				s.Count++
				s.Bytes += len(v)
				return nil
			})
			stats[col] = s
		}
		return nil
	})
	return stats, err
}

// toDoc converts v into a generic document through its JSON encoding so
// that stored and queried values share one representation.
func toDoc(v any) (Doc, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var d Doc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	if d == nil {
		return nil, apperr.Invalid("document", "document is empty")
	}
	return d, nil
}
