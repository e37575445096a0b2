package inmemorystore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/catalog"
)

var apps = catalog.Container{Collection: catalog.Applications, Parent: "{P}"}

func TestFind(t *testing.T) {
	ctx := context.Background()
	c := New(
		catalog.Entry{Collection: catalog.Applications, Parent: "{P}", ID: "{A1}", Name: "Calc"},
		catalog.Entry{Collection: catalog.Applications, Parent: "{P}", ID: "{A2}", Name: "Paint"},
		catalog.Entry{Collection: catalog.Applications, ID: "{A3}", Name: "Calc"},
	)

	testCases := []struct {
		name      string
		container catalog.Container
		id        string
		objName   string
		wantFound bool
		wantID    string
	}{
		{name: "by id", container: apps, id: "{a2}", wantFound: true, wantID: "{A2}"},
		{name: "by name", container: apps, objName: "Calc", wantFound: true, wantID: "{A1}"},
		{name: "id wins over name", container: apps, id: "{A2}", objName: "Calc", wantFound: true, wantID: "{A2}"},
		{name: "other container", container: catalog.Container{Collection: catalog.Applications}, objName: "Calc", wantFound: true, wantID: "{A3}"},
		{name: "missing", container: apps, objName: "Word"},
		{name: "empty query", container: apps},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			obj, found, err := c.Find(ctx, tc.container, tc.id, tc.objName)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFound, found)
			assert.Equal(t, tc.wantID, obj.ID)
		})
	}
	assert.Equal(t, len(testCases), c.Lookups())
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Put(ctx, catalog.Entry{Collection: catalog.Partitions, ID: "{P}", Name: "Old"}))
	require.NoError(t, c.Put(ctx, catalog.Entry{Collection: catalog.Partitions, ID: "{p}", Name: "New"}))

	obj, found, err := c.Find(ctx, catalog.Container{Collection: catalog.Partitions}, "{P}", "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "New", obj.Name)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = c.Put(ctx, catalog.Entry{Collection: "widgets", ID: "{W}", Name: "W"})
	assert.ErrorIs(t, err, catalog.ErrUnknownCollection)
}

func TestFailWith(t *testing.T) {
	ctx := context.Background()
	c := New(catalog.Entry{Collection: catalog.Partitions, ID: "{P}", Name: "Base"})
	boom := errors.New("catalog offline")
	container := catalog.Container{Collection: catalog.Partitions}

	c.FailWith(boom, 1)
	_, _, err := c.Find(ctx, container, "{P}", "")
	assert.ErrorIs(t, err, boom)

	_, found, err := c.Find(ctx, container, "{P}", "")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := catalog.NewGUID()
			assert.NoError(t, c.Put(ctx, catalog.Entry{Collection: catalog.Partitions, ID: id, Name: "p"}))
			_, found, err := c.Find(ctx, catalog.Container{Collection: catalog.Partitions}, id, "")
			assert.NoError(t, err)
			assert.True(t, found, "iteration %d", i)
		}()
	}
	wg.Wait()

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
