package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFamilyServiceExists(t *testing.T) {
	ctx := context.Background()
	fams := newFakeFamilies()
	fams.add("Smith")
	svc := NewFamilyService(fams)

	t.Run("existing name", func(t *testing.T) {
		ok, err := svc.Exists(ctx, "Smith")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("case insensitive", func(t *testing.T) {
		ok, err := svc.Exists(ctx, "sMiTh")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("unknown name", func(t *testing.T) {
		ok, err := svc.Exists(ctx, "Jones")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := svc.Exists(ctx, "   ")
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestFamilyServiceGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when absent", func(t *testing.T) {
		svc := NewFamilyService(newFakeFamilies())
		f, created, err := svc.GetOrCreate(ctx, "  Garcia  ")
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "Garcia", f.Name)
	})

	t.Run("returns existing", func(t *testing.T) {
		fams := newFakeFamilies()
		existing := fams.add("Garcia")
		svc := NewFamilyService(fams)

		f, created, err := svc.GetOrCreate(ctx, "garcia")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, existing.ID, f.ID)
	})

	t.Run("adopts the winner on a create race", func(t *testing.T) {
		fams := newFakeFamilies()
		fams.conflictOnCreate = true
		svc := NewFamilyService(fams)

		f, created, err := svc.GetOrCreate(ctx, "Garcia")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, "Garcia", f.Name)
		require.NotZero(t, f.ID)
	})

	t.Run("rejects an overlong name", func(t *testing.T) {
		svc := NewFamilyService(newFakeFamilies())
		long := make([]byte, maxFamilyNameLen+1)
		for i := range long {
			long[i] = 'a'
		}
		_, _, err := svc.GetOrCreate(ctx, string(long))
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestFamilyServiceJoin(t *testing.T) {
	ctx := context.Background()
	fams := newFakeFamilies()
	svc := NewFamilyService(fams)

	f1, err := svc.Join(ctx, 7, "Nguyen")
	require.NoError(t, err)

	// Joining again is a no-op, same family, single membership.
	f2, err := svc.Join(ctx, 7, "nguyen")
	require.NoError(t, err)
	require.Equal(t, f1.ID, f2.ID)

	list, err := svc.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, f1.ID, list[0].ID)
}
