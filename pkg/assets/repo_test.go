package assets

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"itam/pkg/testhelpers"
)

func setupAssetTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_FOR_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_FOR_TEST not set; skipping asset repository tests")
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

func createTestAsset(t *testing.T, pool *pgxpool.Pool, repo AssetRepository, input CreateAssetInput) string {
	t.Helper()

	assetID, err := repo.Create(context.Background(), input)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM assetdata WHERE asset_id = $1`, assetID)
	})
	return assetID
}

func uniqueSerial() string {
	return fmt.Sprintf("SN-%d", time.Now().UnixNano())
}

func TestPostgresAssetRepository_Create_GeneratesSequentialIDs(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	first := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: uniqueSerial(), Brand: "Dell", Model: "Latitude 5440",
	})
	second := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: uniqueSerial(), Brand: "Dell", Model: "Latitude 5440",
	})

	require.Regexp(t, `^AST_\d+$`, first)
	require.Regexp(t, `^AST_\d+$`, second)
	require.NotEqual(t, first, second)

	a, err := repo.GetByID(ctx, first)
	require.NoError(t, err)
	require.Equal(t, "Laptop", a.AssetType)
	require.Equal(t, "Dell", a.Brand)
	require.Nil(t, a.AssignedTo)
	require.NotNil(t, a.AssetImagePath)
	require.Equal(t, placeholderImagePath, *a.AssetImagePath)
}

func TestPostgresAssetRepository_Create_StoresSpecsUnderCatalogLabels(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	assetID := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType:    "Laptop",
		SerialNumber: uniqueSerial(),
		Brand:        "Dell",
		Model:        "Latitude 5440",
		Specifications: map[string]string{
			"processor":    "Intel Core i7-1355U",
			"ram":          "16GB DDR5",
			"custom_field": "custom value",
			"os":           "",
		},
	})

	entries, err := repo.GetSpecificationsForAsset(ctx, assetID)
	require.NoError(t, err)

	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		byName[e.Name] = e.Value
	}
	require.Equal(t, "Intel Core i7-1355U", byName["Processor"])
	require.Equal(t, "16GB DDR5", byName["RAM"])
	require.Equal(t, "custom value", byName["custom_field"])
	require.NotContains(t, byName, "Operating System")
}

func TestPostgresAssetRepository_Create_OpensAssignmentSpan(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	employee := testhelpers.CreateTestEmployee(t, pool, "History Holder")
	assetID := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Monitor", SerialNumber: uniqueSerial(), Brand: "Dell", Model: "UltraSharp U2723QE",
		AssignedTo: employee,
	})

	a, err := repo.GetByID(ctx, assetID)
	require.NoError(t, err)
	require.NotNil(t, a.AssignedTo)
	require.Equal(t, employee, *a.AssignedTo)

	spans, err := repo.GetHistory(ctx, assetID)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	require.Equal(t, employee, spans[0].EmployeeID)
	require.Equal(t, "History Holder", spans[0].EmployeeName)
	require.True(t, spans[0].IsActive)
	require.Nil(t, spans[0].ReturnedOn)
}

func TestPostgresAssetRepository_Create_DuplicateSerial(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	serial := uniqueSerial()
	createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: serial, Brand: "HP", Model: "EliteBook 840 G10",
	})

	_, err := repo.Create(ctx, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: serial, Brand: "HP", Model: "EliteBook 840 G10",
	})
	require.Error(t, err)
}

func TestPostgresAssetRepository_UpdateAssignment_SpanLifecycle(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	oldHolder := testhelpers.CreateTestEmployee(t, pool, "Old Holder")
	newHolder := testhelpers.CreateTestEmployee(t, pool, "New Holder")
	assetID := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: uniqueSerial(), Brand: "Lenovo", Model: "ThinkPad T14 Gen 4",
		AssignedTo: oldHolder,
	})

	require.NoError(t, repo.UpdateAssignment(ctx, assetID, newHolder, false))

	a, err := repo.GetByID(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, newHolder, *a.AssignedTo)

	spans, err := repo.GetHistory(ctx, assetID)
	require.NoError(t, err)
	require.Len(t, spans, 2)

	byEmployee := make(map[string]HistorySpan, len(spans))
	for _, s := range spans {
		byEmployee[s.EmployeeID] = s
	}
	require.True(t, byEmployee[newHolder].IsActive)
	require.Nil(t, byEmployee[newHolder].ReturnedOn)
	require.False(t, byEmployee[oldHolder].IsActive)
	require.NotNil(t, byEmployee[oldHolder].ReturnedOn)

	// Unassigning closes the open span without starting a new one.
	require.NoError(t, repo.UpdateAssignment(ctx, assetID, "", false))

	a, err = repo.GetByID(ctx, assetID)
	require.NoError(t, err)
	require.Nil(t, a.AssignedTo)

	spans, err = repo.GetHistory(ctx, assetID)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	for _, s := range spans {
		require.False(t, s.IsActive)
	}
}

func TestPostgresAssetRepository_UpdateAssignment_RepairStatusOnly(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	holder := testhelpers.CreateTestEmployee(t, pool, "Steady Holder")
	assetID := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Laptop", SerialNumber: uniqueSerial(), Brand: "Apple", Model: "MacBook Pro 14",
		AssignedTo: holder,
	})

	require.NoError(t, repo.UpdateAssignment(ctx, assetID, holder, true))

	a, err := repo.GetByID(ctx, assetID)
	require.NoError(t, err)
	require.True(t, a.RepairStatus)
	require.Equal(t, holder, *a.AssignedTo)

	spans, err := repo.GetHistory(ctx, assetID)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	require.True(t, spans[0].IsActive)
}

func TestPostgresAssetRepository_UpdateAssignment_UnknownAsset(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)

	err := repo.UpdateAssignment(context.Background(), "AST_0", "EMP001", false)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestPostgresAssetRepository_DeleteBulk(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	first := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Mouse", SerialNumber: uniqueSerial(), Brand: "Logitech", Model: "MX Master 3S",
	})
	second := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Mouse", SerialNumber: uniqueSerial(), Brand: "Logitech", Model: "MX Master 3S",
	})

	deleted, err := repo.DeleteBulk(ctx, []string{first, second, "AST_0"})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	_, err = repo.GetByID(ctx, first)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestPostgresAssetRepository_UpdateFilePath(t *testing.T) {
	pool := setupAssetTestPool(t)
	repo := NewPostgresAssetRepository(pool)
	ctx := context.Background()

	assetID := createTestAsset(t, pool, repo, CreateAssetInput{
		AssetType: "Printer", SerialNumber: uniqueSerial(), Brand: "HP", Model: "LaserJet Pro M404dn",
	})

	require.NoError(t, repo.UpdateFilePath(ctx, assetID, "receipt", "uploads/receipt.pdf"))

	a, err := repo.GetByID(ctx, assetID)
	require.NoError(t, err)
	require.Equal(t, "uploads/receipt.pdf", *a.PurchaseReceiptsPath)
	require.Equal(t, placeholderImagePath, *a.AssetImagePath)

	require.ErrorIs(t, repo.UpdateFilePath(ctx, "AST_0", "image", "uploads/x.png"), ErrAssetNotFound)
	require.Error(t, repo.UpdateFilePath(ctx, assetID, "passport", "uploads/x.png"))
}
