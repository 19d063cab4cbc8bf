package plaindb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func TestAssign(t *testing.T) {
	for _, tc := range []interface{}{
		10,
		"some string",
		struct{ A string }{A: "hi"},
		&struct{ A string }{A: "hi"},
		struct {
			A *string
			B []string
		}{A: strPtr("hi"), B: []string{"hi", "there!"}},
	} {
		srcCopy := tc
		var dest interface{}
		assert.NoError(t, assign(&dest, tc))
		assert.Equal(t, tc, dest)
		assert.Equal(t, srcCopy, tc, "Source value should remain unaffected")
	}
}

func TestAssignErrors(t *testing.T) {
	for _, tc := range []struct {
		description  string
		src, dest    interface{}
		expectedDest interface{}
		expectedErr  string
	}{
		{
			description:  "happy path",
			src:          10,
			dest:         new(int),
			expectedDest: intPtr(10),
		},
		{
			description: "nil",
			src:         10,
			dest:        nil,
			expectedErr: "dest must not be nil",
		},
		{
			description: "typed nil",
			src:         10,
			dest:        (*int)(nil),
			expectedErr: "Cannot set value for *int: <nil>",
		},
		{
			description: "incompatible types",
			src:         10,
			dest:        new(string),
			expectedErr: "Type int is not assignable to *string",
		},
		{
			description: "not a pointer",
			src:         10,
			dest:        "lol not a pointer",
			expectedErr: "dest is not a pointer: string",
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			err := assign(tc.dest, tc.src)
			if tc.expectedErr != "" {
				assert.EqualError(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedDest, tc.dest)
		})
	}
}

func newTestBucket(t *testing.T, saver func(*bucket) error) *bucket {
	t.Helper()
	if saver == nil {
		saver = func(*bucket) error { return nil }
	}
	return &bucket{
		name:    "test",
		path:    filepath.Join(t.TempDir(), "test.json"),
		saver:   saver,
		version: "1",
		data:    map[string]interface{}{},
	}
}

func TestBucketPutGet(t *testing.T) {
	saves := 0
	b := newTestBucket(t, func(*bucket) error {
		saves++
		return nil
	})

	require.NoError(t, b.Put("1", "some value"))
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, b.Len())

	var value string
	found, err := b.Get("1", &value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "some value", value)

	found, err = b.Get("2", &value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBucketDelete(t *testing.T) {
	saves := 0
	b := newTestBucket(t, func(*bucket) error {
		saves++
		return nil
	})
	require.NoError(t, b.Put("1", "some value"))

	require.NoError(t, b.Delete("1"))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 2, saves)

	// deleting an absent ID is a no-op and must not save
	require.NoError(t, b.Delete("1"))
	assert.Equal(t, 2, saves)
}

func TestSaveBucket(t *testing.T) {
	b := newTestBucket(t, nil)
	b.data["1"] = map[string]string{"Name": "Food"}
	require.NoError(t, saveBucket(b))

	contents, err := os.ReadFile(b.path)
	require.NoError(t, err)
	assert.JSONEq(t, `
		{
			"Version": "1",
			"Data": {
				"1": {"Name": "Food"}
			}
		}`, string(contents))

	files, err := filepath.Glob(filepath.Join(filepath.Dir(b.path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, files, "Temp files should be cleaned up")
}

func TestBucketIter(t *testing.T) {
	b := newTestBucket(t, nil)
	require.NoError(t, b.Put("1", "one"))
	require.NoError(t, b.Put("2", "two"))

	seen := map[string]string{}
	var value string
	require.NoError(t, b.Iter(&value, func(id string) bool {
		seen[id] = value
		return true
	}))
	assert.Equal(t, map[string]string{"1": "one", "2": "two"}, seen)

	count := 0
	require.NoError(t, b.Iter(&value, func(string) bool {
		count++
		return false
	}))
	assert.Equal(t, 1, count, "Iter should stop when fn returns false")
}
