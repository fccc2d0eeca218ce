package repairs

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"itam/pkg/testhelpers"
)

func setupRepairTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping repair repository tests")
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

func TestPostgresRepairRepository_StartEndLifecycle(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)
	ctx := context.Background()

	holder := testhelpers.CreateTestEmployee(t, pool, "Repair Holder")
	assetID := testhelpers.CreateTestAsset(t, pool, holder)
	tempID := testhelpers.CreateTestAsset(t, pool, "")

	require.NoError(t, repo.Start(ctx, StartRepairInput{
		AssetID:       assetID,
		TempAssetID:   tempID,
		RepairDetails: "screen cracked",
	}))

	var repairStatus bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT repair_status FROM assetdata WHERE asset_id = $1`, assetID).Scan(&repairStatus))
	require.True(t, repairStatus)

	var tempAssigned *string
	var isTemp bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT assigned_to, is_temp_asset FROM assetdata WHERE asset_id = $1`, tempID).Scan(&tempAssigned, &isTemp))
	require.NotNil(t, tempAssigned)
	require.Equal(t, holder, *tempAssigned)
	require.True(t, isTemp)

	var activeSpans int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignmenthistory WHERE asset_id = $1 AND is_active`, tempID).Scan(&activeSpans))
	require.Equal(t, 1, activeSpans)

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	found := false
	for _, r := range open {
		if r.AssetID == assetID {
			found = true
			require.NotNil(t, r.TempAssetID)
			require.Equal(t, tempID, *r.TempAssetID)
			require.Equal(t, "screen cracked", r.RepairDetails)
			require.Nil(t, r.RepairEnd)
		}
	}
	require.True(t, found)

	require.NoError(t, repo.End(ctx, assetID))

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT repair_status FROM assetdata WHERE asset_id = $1`, assetID).Scan(&repairStatus))
	require.False(t, repairStatus)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT assigned_to FROM assetdata WHERE asset_id = $1`, tempID).Scan(&tempAssigned))
	require.Nil(t, tempAssigned)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignmenthistory WHERE asset_id = $1 AND is_active`, tempID).Scan(&activeSpans))
	require.Zero(t, activeSpans)

	open, err = repo.ListOpen(ctx)
	require.NoError(t, err)
	for _, r := range open {
		require.NotEqual(t, assetID, r.AssetID)
	}
}

func TestPostgresRepairRepository_Start_AlreadyUnderRepair(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)
	ctx := context.Background()

	assetID := testhelpers.CreateTestAsset(t, pool, "")

	require.NoError(t, repo.Start(ctx, StartRepairInput{AssetID: assetID, RepairDetails: "first"}))

	err := repo.Start(ctx, StartRepairInput{AssetID: assetID, RepairDetails: "second"})
	require.ErrorIs(t, err, ErrRepairInProgress)
}

func TestPostgresRepairRepository_Start_UnknownAsset(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)

	err := repo.Start(context.Background(), StartRepairInput{AssetID: "AST_0", RepairDetails: "x"})
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestPostgresRepairRepository_Start_UnknownTempAsset(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)
	ctx := context.Background()

	holder := testhelpers.CreateTestEmployee(t, pool, "Repair Holder")
	assetID := testhelpers.CreateTestAsset(t, pool, holder)

	err := repo.Start(ctx, StartRepairInput{AssetID: assetID, TempAssetID: "AST_0", RepairDetails: "x"})
	require.ErrorIs(t, err, ErrTempAssetNotFound)

	// The failed transaction must not leave the asset flagged.
	var repairStatus bool
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT repair_status FROM assetdata WHERE asset_id = $1`, assetID).Scan(&repairStatus))
	require.False(t, repairStatus)
}

func TestPostgresRepairRepository_Start_UnassignedAssetSkipsLending(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)
	ctx := context.Background()

	assetID := testhelpers.CreateTestAsset(t, pool, "")
	tempID := testhelpers.CreateTestAsset(t, pool, "")

	require.NoError(t, repo.Start(ctx, StartRepairInput{
		AssetID:       assetID,
		TempAssetID:   tempID,
		RepairDetails: "nobody holds it",
	}))

	var tempAssigned *string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT assigned_to FROM assetdata WHERE asset_id = $1`, tempID).Scan(&tempAssigned))
	require.Nil(t, tempAssigned)
}

func TestPostgresRepairRepository_End_NoOpenRepair(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)

	assetID := testhelpers.CreateTestAsset(t, pool, "")

	err := repo.End(context.Background(), assetID)
	require.ErrorIs(t, err, ErrNoOpenRepair)
}

func TestPostgresRepairRepository_End_UnknownAsset(t *testing.T) {
	pool := setupRepairTestPool(t)
	repo := NewPostgresRepairRepository(pool)

	err := repo.End(context.Background(), "AST_0")
	require.ErrorIs(t, err, ErrAssetNotFound)
}
