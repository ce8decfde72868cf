package history

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	s, err := Open(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, path, s.Path())

	for _, entry := range []string{"x^2", "x^2", "  ", "sin[x]", "a\nb", "ln[x]", "tan[x]"} {
		require.NoError(t, s.Add(entry))
	}
	assert.Equal(t, []string{"sin[x]", "ln[x]", "tan[x]"}, s.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sin[x]\nln[x]\ntan[x]\n", string(data))

	t.Run("reload", func(t *testing.T) {
		again, err := Open(path, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"ln[x]", "tan[x]"}, again.Entries())
	})

	t.Run("entries are copies", func(t *testing.T) {
		entries := s.Entries()
		entries[0] = "changed"
		assert.Equal(t, "sin[x]", s.Entries()[0])
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Clear())
		assert.Equal(t, 0, s.Len())
		assert.NoFileExists(t, path)
		require.NoError(t, s.Clear())
	})
}

func TestDefaultLimit(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, s.limit)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".deriv", "history"), path)
}

func TestConcurrentAdd(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history"), 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Add(string(rune('a'+i))+"x"))
			s.Entries()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}
