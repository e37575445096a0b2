package localsession

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/inmemorystore"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/session"
)

var parts = catalog.Container{Collection: catalog.Partitions}

func newSession(t *testing.T, cat catalog.Catalog) (context.Context, *Session) {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	f := &Factory{Catalog: cat, Metrics: metrics.New()}
	s, err := f.NewSession(ctx)
	require.NoError(t, err)
	return ctx, s.(*Session)
}

func TestSession_Cache(t *testing.T) {
	cat := inmemorystore.New(catalog.Entry{Collection: catalog.Partitions, ID: "{P}", Name: "Base"})
	ctx, s := newSession(t, cat)

	obj, found, err := s.Find(ctx, parts, "", "Base")
	require.NoError(t, err)
	require.True(t, found)

	again, found, err := s.Find(ctx, parts, "{p}", "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, obj, again)
	assert.Equal(t, 1, cat.Lookups(), "lookup by a cached id must not reach the catalog")

	s.Refresh()
	_, _, err = s.Find(ctx, parts, "{P}", "")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Lookups())
	assert.Equal(t, 2, s.Lookups())
}

func TestSession_Errors(t *testing.T) {
	cat := inmemorystore.New()
	ctx, s := newSession(t, cat)

	boom := errors.New("offline")
	cat.FailWith(boom, 1)
	_, _, err := s.Find(ctx, parts, "{P}", "")
	assert.ErrorIs(t, err, boom)

	_, found, err := s.Find(ctx, parts, "{P}", "")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	_, _, err = s.Find(ctx, parts, "{P}", "")
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestFactory_RequiresCatalog(t *testing.T) {
	f := &Factory{}
	_, err := f.NewSession(ctxlog.Discard(context.Background()))
	assert.ErrorContains(t, err, "no catalog configured")
}
