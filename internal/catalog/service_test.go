package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/cache"
	"github.com/noah-isme/backend-pupuseria/internal/catalog"
	"github.com/noah-isme/backend-pupuseria/internal/money"
)

func TestGroupedListingCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store: store,
		Cache: cache.NewJSON(client, 5*time.Minute),
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, catalog.CreateParams{Name: "revuelta", Price: money.FromCents(250)})
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, mr.Exists("catalog:products:grouped"))

	// A second product invalidates the cached listing.
	_, err = svc.Create(ctx, catalog.CreateParams{Name: "queso", Price: money.FromCents(200)})
	require.NoError(t, err)
	require.False(t, mr.Exists("catalog:products:grouped"))

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestNormalizeMasa(t *testing.T) {
	require.Equal(t, "maiz", catalog.NormalizeMasa("Maíz"))
	require.Equal(t, "arroz", catalog.NormalizeMasa(" arróz "))
	require.Equal(t, "maiz", catalog.NormalizeMasa("maiz"))
	require.Equal(t, "harina", catalog.NormalizeMasa("Harina"))
}
