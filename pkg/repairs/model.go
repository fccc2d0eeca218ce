package repairs

import "time"

// Repair is a row in repairstatustracker. RepairEnd is NULL while the
// repair is open.
type Repair struct {
	ID            int
	AssetID       string
	TempAssetID   *string
	RepairStart   time.Time
	RepairEnd     *time.Time
	RepairDetails string
}

// RepairView is an open repair as clients see it.
type RepairView struct {
	AssetID       string  `json:"assetId"`
	TempAssetID   *string `json:"tempAssetId"`
	RepairDetails string  `json:"repairDetails"`
	RepairStart   string  `json:"repairStart"`
}

// StartRepairInput carries a repair-start request. TempAssetID is the
// optional substitute unit handed to the asset's holder.
type StartRepairInput struct {
	AssetID       string
	TempAssetID   string
	RepairDetails string
}
