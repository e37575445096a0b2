package decision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/entity"
)

func TestParse(t *testing.T) {
	for _, d := range []Decision{Abort, Retry, Ignore} {
		parsed, err := Parse(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := Parse("maybe")
	assert.ErrorContains(t, err, "unknown decision 'maybe'")
}

func TestFixed(t *testing.T) {
	f := Fixed{Conflicts: Ignore, Unavailable: Retry}
	ctx := context.Background()

	d, err := f.Resolve(ctx, Conflict{Type: NameConflict})
	require.NoError(t, err)
	assert.Equal(t, Ignore, d)

	d, err = f.Resolve(ctx, Conflict{Type: CatalogUnavailable})
	require.NoError(t, err)
	assert.Equal(t, Retry, d)

	var zero Fixed
	d, err = zero.Resolve(ctx, Conflict{Type: IdentifierConflict})
	require.NoError(t, err)
	assert.Equal(t, Abort, d, "the zero policy aborts")
}

func TestFunc(t *testing.T) {
	var seen Conflict
	f := Func(func(_ context.Context, c Conflict) (Decision, error) {
		seen = c
		return Retry, nil
	})
	d, err := f.Resolve(context.Background(), Conflict{Key: "app"})
	require.NoError(t, err)
	assert.Equal(t, Retry, d)
	assert.Equal(t, "app", seen.Key)
}

func TestConflict_Message(t *testing.T) {
	testCases := []struct {
		name     string
		conflict Conflict
		want     string
	}{
		{
			name: "identifier",
			conflict: Conflict{
				Type: IdentifierConflict, Kind: entity.KindApplication, Key: "app", ID: "{A}",
				Existing: catalog.Object{ID: "{A}", Name: "Other"},
			},
			want: "application 'app': identifier {A} already belongs to 'Other'",
		},
		{
			name: "name",
			conflict: Conflict{
				Type: NameConflict, Kind: entity.KindPartition, Key: "p", Name: "Base",
				Existing: catalog.Object{ID: "{P}", Name: "Base"},
			},
			want: "partition 'p': name 'Base' is already used by {P}",
		},
		{
			name:     "unavailable",
			conflict: Conflict{Type: CatalogUnavailable, Kind: entity.KindApplicationRole, Key: "r", Err: errors.New("offline")},
			want:     "application_role 'r': catalog lookup failed: offline",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.conflict.Message())
		})
	}
}
