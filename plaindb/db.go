// Package plaindb is a plain-text JSON record store. Each bucket is one
// human-readable file, with versioned records upgraded on load and optional
// Git history for every save.
package plaindb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"pocketbook/vcs"
)

// MaxUpgradeAttempts limits successive record upgrades to catch version
// loops, e.g. upgrading to v2 but bouncing v0 -> v1 -> v0 forever.
const MaxUpgradeAttempts = 1000

// Upgrader upgrades bucket records to the requested version
type Upgrader interface {
	// Parse parses the original JSON record for the given version
	Parse(dataVersion, id string, data json.RawMessage) (interface{}, error)
	// Upgrade upgrades 'data' one step toward 'dataVersion'. May run repeatedly.
	Upgrade(dataVersion, id string, data interface{}) (newVersion string, newData interface{}, err error)
}

// LegacyUpgrader also parses data from a legacy, unversioned format
type LegacyUpgrader interface {
	Upgrader
	// ParseLegacy parses the original JSON data as a whole
	ParseLegacy(legacyData json.RawMessage) (version string, data map[string]json.RawMessage, err error)
}

// DB creates buckets that can read or write JSON records
type DB interface {
	io.Closer
	// Bucket returns a bucket stored as 'name.json', auto-upgraded to 'version'
	Bucket(name, version string, upgrader Upgrader) (Bucket, error)
}

type database struct {
	path    string
	repo    vcs.Repository
	buckets map[string]*bucket
}

// Open prepares the directory at 'path' for use as a DB
func Open(path string, opts ...DBOpt) (DB, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	db := &database{
		path:    path,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		if err := opt.do(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (db *database) saver(b *bucket) error {
	if db.repo == nil {
		return saveBucket(b)
	}
	return db.repo.CommitFiles(func() error {
		return saveBucket(b)
	}, "Update "+b.name, b.path)
}

func (db *database) Bucket(name, version string, upgrader Upgrader) (Bucket, error) {
	return db.bucket(name, version, upgrader, os.ReadFile, db.saver)
}

func (db *database) bucket(
	name, version string,
	upgrader Upgrader,
	readFile func(string) ([]byte, error),
	saver func(*bucket) error,
) (Bucket, error) {
	if upgrader == nil {
		return nil, errors.New("Upgrader must not be nil")
	}
	if b, exists := db.buckets[name]; exists {
		return b, nil
	}

	path := filepath.Join(db.path, name+".json")
	dataBytes, err := readFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		dataBytes = []byte(`{}`)
	}

	var bucketBytes unmarshalBucket
	err = json.Unmarshal(dataBytes, &bucketBytes)
	if err != nil || bucketBytes.Version == "" {
		var rawRecords map[string]json.RawMessage
		if rawErr := json.Unmarshal(dataBytes, &rawRecords); rawErr == nil && len(rawRecords) == 0 {
			// brand new bucket
			bucketBytes = unmarshalBucket{Version: version}
		} else {
			// unversioned file, try the legacy format
			legacyUp, ok := upgrader.(LegacyUpgrader)
			if !ok {
				if err == nil {
					err = errors.Errorf("Bucket %q has no version and no legacy upgrader", name)
				}
				return nil, err
			}
			legacyVersion, data, legacyErr := legacyUp.ParseLegacy(dataBytes)
			if legacyErr != nil {
				return nil, errors.Wrap(legacyErr, "Parse legacy format")
			}
			bucketBytes.Version = legacyVersion
			bucketBytes.Data = make(map[string]*json.RawMessage, len(data))
			for id := range data {
				raw := data[id]
				bucketBytes.Data[id] = &raw
			}
		}
	}

	data := make(map[string]interface{}, len(bucketBytes.Data))
	for id, raw := range bucketBytes.Data {
		var err error
		data[id], err = upgrader.Parse(bucketBytes.Version, id, *raw)
		if err != nil {
			return nil, err
		}
	}

	if bucketBytes.Version != version {
		for id := range data {
			currentVersion := bucketBytes.Version
			upgradeAttempts := 0
			for currentVersion != version {
				if upgradeAttempts > MaxUpgradeAttempts {
					return nil, errors.Errorf("Too many upgrade attempts to version %q. Version upgrade loop? Current version: %q", version, currentVersion)
				}
				upgradeAttempts++

				newVersion, newValue, err := upgrader.Upgrade(currentVersion, id, data[id])
				if err != nil {
					return nil, err
				}
				if newVersion == currentVersion {
					return nil, errors.Errorf("Could not upgrade %q data from %q to %q: %+v", name, currentVersion, version, data[id])
				}
				currentVersion = newVersion
				data[id] = newValue
			}
		}
	}

	b := &bucket{
		name:    name,
		path:    path,
		saver:   saver,
		version: version,
		data:    data,
	}
	db.buckets[name] = b
	return b, nil
}

// Close locks all buckets to prepare for safe shutdown. Use after Close is undefined.
func (db *database) Close() error {
	if db == nil {
		return nil
	}
	for _, b := range db.buckets {
		b.mu.Lock()
	}
	return nil
}

// MockDB is a DB with additional mocking utilities
type MockDB interface {
	DB
	Dump(Bucket) string
}

// MockConfig contains stubs for a full MockDB
type MockConfig struct {
	FileReader func(path string) ([]byte, error)
	Saver      func(Bucket) error
}

type mockDatabase struct {
	database
	MockConfig
}

// NewMockDB creates a DB without a backing file store, for use in tests
func NewMockDB(conf MockConfig) MockDB {
	if conf.FileReader == nil {
		conf.FileReader = func(string) ([]byte, error) { return nil, os.ErrNotExist }
	}
	if conf.Saver == nil {
		conf.Saver = func(Bucket) error { return nil }
	}
	return &mockDatabase{
		database: database{
			path:    "mock",
			buckets: map[string]*bucket{},
		},
		MockConfig: conf,
	}
}

func (db *mockDatabase) Bucket(name, version string, upgrader Upgrader) (Bucket, error) {
	return db.bucket(name, version, upgrader, db.FileReader, func(b *bucket) error { return db.Saver(b) })
}

func (db *mockDatabase) Dump(b Bucket) string {
	bucketStruct, ok := b.(*bucket)
	if !ok {
		panic(fmt.Sprintf("Invalid bucket struct for MockDB.Dump: %T", b))
	}
	if filepath.Dir(bucketStruct.path) != db.path {
		panic("Invalid bucket for MockDB.Dump: Bucket was not created by MockDB")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(marshalBucket{
		Version: bucketStruct.version,
		Data:    bucketStruct.data,
	}); err != nil {
		panic(err)
	}
	return buf.String()
}
