package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/modelproxy/pkg/config"
)

type mapProfiles map[string]config.Profile

func (m mapProfiles) Profile(id string) (config.Profile, bool) {
	p, ok := m[id]
	return p, ok
}

func TestFactoryMemoizes(t *testing.T) {
	f := NewFactory(mapProfiles{"Search.list": liveProfile()}, nil)

	a, err := f.Get("Search.list")
	require.NoError(t, err)
	b, err := f.Get("Search.list")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, f.Len())

	f.Reset()
	assert.Equal(t, 0, f.Len())
	c, err := f.Get("Search.list")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestFactoryUnknownID(t *testing.T) {
	f := NewFactory(mapProfiles{}, nil)
	_, err := f.Get("Nope.nothing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, 0, f.Len())
}

func TestFactoryDoesNotCacheFailures(t *testing.T) {
	prof := liveProfile()
	prof.Status = "prod"
	prof.URLs = map[string]string{"dev": "http://dev.invalid"}
	profiles := mapProfiles{"Search.list": prof}
	f := NewFactory(profiles, nil)

	_, err := f.Get("Search.list")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, 0, f.Len())

	prof.URLs["prod"] = "http://prod.invalid"
	profiles["Search.list"] = prof
	d, err := f.Get("Search.list")
	require.NoError(t, err)
	assert.Equal(t, "http://prod.invalid", d.URL())
}

func TestFactoryConcurrentGet(t *testing.T) {
	f := NewFactory(mapProfiles{"Search.list": liveProfile()}, nil)

	var wg sync.WaitGroup
	got := make([]*Dispatcher, 32)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = f.Get("Search.list")
		}()
	}
	wg.Wait()

	for _, d := range got {
		assert.Same(t, got[0], d)
	}
}
