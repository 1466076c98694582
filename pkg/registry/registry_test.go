package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/genx/pkg/errors"
)

type endpoint struct {
	Host string
	Port int
}

func TestRegister(t *testing.T) {
	reg := New[endpoint]()

	t.Run("register valid item", func(t *testing.T) {
		require.NoError(t, reg.Register("db", endpoint{Host: "localhost", Port: 5432}))
		assert.Equal(t, 1, reg.Count())
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("", endpoint{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	})

	t.Run("register duplicate", func(t *testing.T) {
		err := reg.Register("db", endpoint{Host: "other"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "got %v", err)
		assert.Equal(t, "db", errors.GetErrorDetails(err)["name"])

		got, _ := reg.Get("db")
		assert.Equal(t, "localhost", got.Host, "duplicate must not overwrite")
	})
}

func TestReplace(t *testing.T) {
	reg := New[endpoint]()

	replaced, err := reg.Replace("cache", endpoint{Port: 1})
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = reg.Replace("cache", endpoint{Port: 2})
	require.NoError(t, err)
	assert.True(t, replaced)

	got, err := reg.Get("cache")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Port)

	_, err = reg.Replace("", endpoint{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestGetAndLookup(t *testing.T) {
	reg := New[endpoint]()
	_ = reg.Register("db", endpoint{Port: 5432})

	got, err := reg.Get("db")
	require.NoError(t, err)
	assert.Equal(t, 5432, got.Port)

	_, err = reg.Get("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, ok := reg.Lookup("missing")
	assert.False(t, ok)
}

func TestListIsSorted(t *testing.T) {
	reg := New[int]()
	for i, name := range []string{"charlie", "alpha", "bravo"} {
		_ = reg.Register(name, i)
	}

	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, reg.List())
}

func TestClear(t *testing.T) {
	reg := New[int]()
	for i := 0; i < 5; i++ {
		_ = reg.Register(fmt.Sprintf("item%d", i), i)
	}

	reg.Clear()

	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.List())
}

func TestConcurrency(t *testing.T) {
	reg := New[int]()
	const goroutines = 10
	const itemsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_item%d", id, i)
				if err := reg.Register(name, id*1000+i); err != nil {
					t.Errorf("concurrent Register() failed: %v", err)
				}
				_, _ = reg.Replace("shared", i)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, goroutines*itemsPerGoroutine+1, reg.Count())
}

func TestMustRegister(t *testing.T) {
	reg := New[int]()

	MustRegister(reg, "one", 1)
	assert.True(t, reg.Has("one"))

	assert.Panics(t, func() { MustRegister(reg, "one", 2) })
}

func BenchmarkGet(b *testing.B) {
	reg := New[int]()
	for i := 0; i < 1000; i++ {
		_ = reg.Register(fmt.Sprintf("item%d", i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Get(fmt.Sprintf("item%d", i%1000))
	}
}

func ExampleRegistry() {
	reg := New[string]()

	_ = reg.Register("db", "postgres://localhost")
	_, _ = reg.Replace("db", "postgres://replica")

	fmt.Println(reg.List())
	db, _ := reg.Get("db")
	fmt.Println(db)

	// Output:
	// [db]
	// postgres://replica
}
