package testhelpers

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Seeded with the start time so fixture ids stay unique even when a crashed
// run left rows behind.
var uniqueCounter = time.Now().UnixNano()

func nextSuffix() int64 {
	return atomic.AddInt64(&uniqueCounter, 1)
}

// CreateTestEmployee inserts a peopledata row with the given display name and
// returns its employee id. The row is removed on test cleanup.
func CreateTestEmployee(t *testing.T, db *pgxpool.Pool, name string) string {
	t.Helper()

	ctx := context.Background()
	nameID := fmt.Sprintf("EMP_T%d", nextSuffix())

	_, err := db.Exec(ctx,
		`INSERT INTO peopledata (name_id, name, department, email) VALUES ($1, $2, 'IT', $3)`,
		nameID, name, nameID+"@corp.example")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec(context.Background(), `DELETE FROM peopledata WHERE name_id = $1`, nameID)
	})
	return nameID
}

// CreateTestAsset inserts a minimal laptop row and returns its asset id. When
// assignedTo is non-empty the asset also gets an open assignment span, the
// state the asset workflows leave behind. Spec and history rows die with the
// asset on cleanup via the FK cascades.
func CreateTestAsset(t *testing.T, db *pgxpool.Pool, assignedTo string) string {
	return insertAsset(t, db, assignedTo, nil)
}

// CreateTestAssetWithWarranty is CreateTestAsset with a warranty end date,
// for exercising the expiry scans.
func CreateTestAssetWithWarranty(t *testing.T, db *pgxpool.Pool, expiry time.Time, assignedTo string) string {
	return insertAsset(t, db, assignedTo, &expiry)
}

func insertAsset(t *testing.T, db *pgxpool.Pool, assignedTo string, expiry *time.Time) string {
	t.Helper()

	ctx := context.Background()
	suffix := nextSuffix()
	assetID := fmt.Sprintf("AST_T%d", suffix)

	var assigned *string
	if assignedTo != "" {
		assigned = &assignedTo
	}

	_, err := db.Exec(ctx,
		`INSERT INTO assetdata (asset_id, serial_no, asset_type, brand, model, warranty_expiry, assigned_to)
		 VALUES ($1, $2, 'Laptop', 'Dell', 'Latitude 5440', $3, $4)`,
		assetID, fmt.Sprintf("SN_T%d", suffix), expiry, assigned)
	require.NoError(t, err)

	if assigned != nil {
		_, err = db.Exec(ctx,
			`INSERT INTO assignmenthistory (asset_id, employee_id, employee_name, assigned_on, is_active)
			 VALUES ($1, $2, $2, CURRENT_DATE, TRUE)`, assetID, assignedTo)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		db.Exec(context.Background(), `DELETE FROM assetdata WHERE asset_id = $1`, assetID)
	})
	return assetID
}
