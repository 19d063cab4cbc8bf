package plaindb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"pocketbook/redactor"
)

// Bucket reads and writes records on a DB
type Bucket interface {
	// Iter iterates over all records, assigning each value to 'v', then calling fn with its ID
	Iter(v interface{}, fn func(id string) (keepGoing bool)) error
	// Get reads the record with key 'id' into 'v'
	Get(id string, v interface{}) (found bool, err error)
	// Put writes the record 'v' with key 'id'
	Put(id string, v interface{}) error
	// Delete removes the record with key 'id'. Deleting an absent ID is a no-op.
	Delete(id string) error
	// Len returns the number of records
	Len() int
}

type bucket struct {
	name  string
	path  string
	mu    sync.RWMutex
	saver func(*bucket) error

	version string
	data    map[string]interface{}
}

type unmarshalBucket struct {
	Version string
	Data    map[string]*json.RawMessage
}

type marshalBucket struct {
	Version string
	Data    map[string]interface{}
}

func (b *bucket) Iter(v interface{}, fn func(id string) (keepGoing bool)) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, value := range b.data {
		if err := assign(v, value); err != nil {
			return b.wrapErr(err)
		}
		if !fn(id) {
			return nil
		}
	}
	return nil
}

func (b *bucket) Get(id string, v interface{}) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, found := b.data[id]
	if !found {
		return false, nil
	}
	return found, b.wrapErr(assign(v, value))
}

func (b *bucket) Put(id string, v interface{}) error {
	b.mu.Lock()
	b.data[id] = v
	b.mu.Unlock()
	return b.saver(b)
}

func (b *bucket) Delete(id string) error {
	b.mu.Lock()
	_, found := b.data[id]
	delete(b.data, id)
	b.mu.Unlock()
	if !found {
		return nil
	}
	return b.saver(b)
}

func (b *bucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

func (b *bucket) wrapErr(err error) error {
	return errors.Wrap(err, "Bucket "+b.name)
}

func saveBucket(b *bucket) (returnErr error) {
	dir := filepath.Dir(b.path)
	file, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return b.wrapErr(err)
	}
	defer func() {
		closeErr := file.Close()
		rmErr := os.Remove(file.Name()) // clean up tmp file, if it wasn't renamed
		if returnErr == nil {
			if rmErr != nil && !os.IsNotExist(rmErr) {
				returnErr = b.wrapErr(rmErr)
			}
			if closeErr != nil {
				returnErr = b.wrapErr(closeErr)
			}
		}
	}()

	// redactor.Encoder persists secrets on disk that plain marshalers redact
	enc := redactor.NewEncoder(file)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	b.mu.RLock()
	err = enc.Encode(marshalBucket{
		Version: b.version,
		Data:    b.data,
	})
	b.mu.RUnlock()
	if err != nil {
		return b.wrapErr(err)
	}

	return b.wrapErr(os.Rename(file.Name(), b.path))
}

// assign sets dest's pointer value to source
func assign(dest interface{}, source interface{}) (err error) {
	if dest == nil {
		return errors.New("dest must not be nil")
	}
	defer func() {
		// reflection panics on misuse, recover and report the error instead
		if v := recover(); v != nil && err == nil {
			err = errors.Errorf("Reflect error during assignment: %+v", v)
		}
	}()

	destValue := reflect.ValueOf(dest)
	if destValue.Type().Kind() != reflect.Ptr {
		return errors.Errorf("dest is not a pointer: %T", dest)
	}
	destValue = destValue.Elem()
	if !destValue.CanSet() {
		return errors.Errorf("Cannot set value for %T: %+v", dest, dest)
	}

	sourceValue := reflect.ValueOf(source)
	if !sourceValue.Type().AssignableTo(destValue.Type()) {
		return errors.Errorf("Type %T is not assignable to %T", source, dest)
	}
	destValue.Set(sourceValue)
	return nil
}
