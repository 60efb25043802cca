package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/illarion/pwvault/internal/vault"
)

// Bucket names
var (
	MetaBucket       = []byte("meta")       // schema version, creation time
	ContainersBucket = []byte("containers") // absolute path -> ContainerRecord
	BackupsBucket    = []byte("backups")    // container ID -> sequence -> BackupRecord
)

// Meta keys
var (
	MetaVersion = []byte("version")
	MetaCreated = []byte("created")
)

const schemaVersion = "1"

// ErrUnknownContainer is returned for paths the catalog has never seen
var ErrUnknownContainer = errors.New("container not in catalog")

// ContainerRecord is what the catalog remembers about one container file.
// It never holds secrets.
type ContainerRecord struct {
	ID         string        `json:"id"`
	Path       string        `json:"path"`
	Version    vault.Version `json:"version"`
	Created    time.Time     `json:"created"`
	LastOpened time.Time     `json:"lastOpened,omitzero"`
	LastSaved  time.Time     `json:"lastSaved,omitzero"`
	Migrated   time.Time     `json:"migrated,omitzero"`
}

// BackupRecord describes one snapshot taken before an overwrite
type BackupRecord struct {
	Snapshot string    `json:"snapshot"`
	Created  time.Time `json:"created"`
}

// Catalog provides BBolt-based bookkeeping of known containers
type Catalog struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the catalog database at path
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	c := &Catalog{db: db, now: time.Now}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Path returns the database file location
func (c *Catalog) Path() string {
	return c.db.Path()
}

func (c *Catalog) initialize() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{MetaBucket, ContainersBucket, BackupsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(MetaBucket)
		if meta.Get(MetaVersion) != nil {
			return nil
		}
		if err := meta.Put(MetaVersion, []byte(schemaVersion)); err != nil {
			return err
		}
		created, _ := c.now().MarshalBinary()
		return meta.Put(MetaCreated, created)
	})
}

// Container returns the record for the container at path
func (c *Catalog) Container(path string) (*ContainerRecord, error) {
	key, err := pathKey(path)
	if err != nil {
		return nil, err
	}

	var rec *ContainerRecord
	err = c.db.View(func(tx *bolt.Tx) error {
		var getErr error
		rec, getErr = getContainer(tx, key)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, path)
	}
	return rec, nil
}

// Containers returns every known container
func (c *Catalog) Containers() ([]ContainerRecord, error) {
	var records []ContainerRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ContainersBucket).ForEach(func(k, v []byte) error {
			var rec ContainerRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt catalog entry %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// GetOrCreateContainerID retrieves the ID of the container at path,
// registering the container when it is new. IDs key the OS keyring.
func (c *Catalog) GetOrCreateContainerID(path string) (string, error) {
	var id string
	err := c.update(path, func(rec *ContainerRecord) {
		id = rec.ID
	})
	return id, err
}

// Opened records a successful read of the container at path
func (c *Catalog) Opened(path string, version vault.Version) error {
	return c.update(path, func(rec *ContainerRecord) {
		rec.Version = version
		rec.LastOpened = c.now()
	})
}

// Saved records a successful write. Writes always produce the current
// format, so a V1 previous version marks a migration.
func (c *Catalog) Saved(path string, previous vault.Version) error {
	return c.update(path, func(rec *ContainerRecord) {
		now := c.now()
		if previous == vault.V1 {
			rec.Migrated = now
		}
		rec.Version = vault.V2
		rec.LastSaved = now
	})
}

// BackedUp appends a snapshot to the container's backup history
func (c *Catalog) BackedUp(path, snapshot string) error {
	var id string
	if err := c.update(path, func(rec *ContainerRecord) { id = rec.ID }); err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		history, err := tx.Bucket(BackupsBucket).CreateBucketIfNotExists([]byte(id))
		if err != nil {
			return err
		}
		seq, err := history.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(BackupRecord{Snapshot: snapshot, Created: c.now()})
		if err != nil {
			return err
		}
		return history.Put(itob(seq), data)
	})
}

// Backups returns the recorded snapshots of the container at path,
// oldest first.
func (c *Catalog) Backups(path string) ([]BackupRecord, error) {
	rec, err := c.Container(path)
	if err != nil {
		return nil, err
	}

	var records []BackupRecord
	err = c.db.View(func(tx *bolt.Tx) error {
		history := tx.Bucket(BackupsBucket).Bucket([]byte(rec.ID))
		if history == nil {
			return nil
		}
		return history.ForEach(func(k, v []byte) error {
			var b BackupRecord
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			records = append(records, b)
			return nil
		})
	})
	return records, err
}

// update loads or creates the record for path, applies fn and stores it
func (c *Catalog) update(path string, fn func(*ContainerRecord)) error {
	key, err := pathKey(path)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		rec, err := getContainer(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			rec = &ContainerRecord{
				ID:      uuid.NewString(),
				Path:    string(key),
				Created: c.now(),
			}
		}

		fn(rec)

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(ContainersBucket).Put(key, data)
	})
}

func getContainer(tx *bolt.Tx, key []byte) (*ContainerRecord, error) {
	data := tx.Bucket(ContainersBucket).Get(key)
	if data == nil {
		return nil, nil
	}
	rec := &ContainerRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("corrupt catalog entry %s: %w", key, err)
	}
	return rec, nil
}

func pathKey(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return []byte(abs), nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
