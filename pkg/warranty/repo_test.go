package warranty

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"itam/pkg/testhelpers"
)

func setupWarrantyTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping warranty repository tests")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresWarrantyRepository_ListExpiring(t *testing.T) {
	pool := setupWarrantyTestPool(t)
	repo := NewPostgresWarrantyRepository(pool)
	ctx := context.Background()

	employeeID := testhelpers.CreateTestEmployee(t, pool, "Warranty Tester")

	now := time.Now()
	inside := testhelpers.CreateTestAssetWithWarranty(t, pool, now.AddDate(0, 0, 10), employeeID)
	lapsed := testhelpers.CreateTestAssetWithWarranty(t, pool, now.AddDate(0, 0, -5), "")
	beyond := testhelpers.CreateTestAssetWithWarranty(t, pool, now.AddDate(0, 0, 90), "")

	expiring, err := repo.ListExpiring(ctx, now.AddDate(0, 0, 30))
	require.NoError(t, err)

	ids := make(map[string]ExpiringWarranty, len(expiring))
	for _, e := range expiring {
		ids[e.AssetID] = e
	}

	found, ok := ids[inside]
	require.True(t, ok, "asset inside the window should be reported")
	require.Equal(t, "Laptop", found.AssetType)
	require.Equal(t, "Warranty Tester", found.AssignedTo)
	require.False(t, found.WarrantyEnd.IsZero())

	require.NotContains(t, ids, lapsed, "already lapsed warranty should be skipped")
	require.NotContains(t, ids, beyond, "warranty beyond the window should be skipped")
}

func TestPostgresWarrantyRepository_ListExpiring_UnassignedHasEmptyHolder(t *testing.T) {
	pool := setupWarrantyTestPool(t)
	repo := NewPostgresWarrantyRepository(pool)
	ctx := context.Background()

	assetID := testhelpers.CreateTestAssetWithWarranty(t, pool, time.Now().AddDate(0, 0, 7), "")

	expiring, err := repo.ListExpiring(ctx, time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)

	for _, e := range expiring {
		if e.AssetID == assetID {
			require.Empty(t, e.AssignedTo)
			return
		}
	}
	t.Fatalf("asset %s not reported", assetID)
}
