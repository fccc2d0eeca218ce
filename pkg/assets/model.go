package assets

import "time"

// Asset is a row in assetdata. Pointer fields are nullable columns.
type Asset struct {
	AssetID              string
	SerialNo             string
	AssetType            string
	Brand                string
	Model                string
	DateOfPurchase       *time.Time
	ProductCost          *float64
	GST                  *float64
	WarrantyExpiry       *time.Time
	IsRental             bool
	LeaseCost            *float64
	LeaseExpiry          *time.Time
	AssignedTo           *string
	RepairStatus         bool
	IsTempAsset          bool
	AssetImagePath       *string
	PurchaseReceiptsPath *string
	WarrantyCardPath     *string
}

// SpecEntry is one stored specification value (label -> value after the
// catalog mapping ran at create time).
type SpecEntry struct {
	Name  string
	Value string
}

// HistorySpan is a row in assignmenthistory.
type HistorySpan struct {
	AssetID      string
	EmployeeID   string
	EmployeeName string
	AssignedOn   *time.Time
	ReturnedOn   *time.Time
	IsActive     bool
}

// AssetView is the list shape, keyed by asset id in the response map.
// Specifications bundle the stored spec values plus brand and model.
type AssetView struct {
	AssetID        string            `json:"assetId"`
	SerialNumber   string            `json:"serialNumber"`
	AssetType      string            `json:"assetType"`
	Specifications map[string]string `json:"specifications"`
	AssignedTo     *string           `json:"assignedTo"`
	RepairStatus   bool              `json:"repairStatus"`
	WarrantyExpiry *string           `json:"warrantyExpiry"`
}

// AssetDetail extends the list shape with purchase, lease and document
// fields for the single-asset page.
type AssetDetail struct {
	AssetView
	PurchaseDate         *string  `json:"purchaseDate"`
	PurchaseCost         *float64 `json:"purchaseCost"`
	GSTPaid              *float64 `json:"gstPaid"`
	IsRental             bool     `json:"isRental"`
	LeaseCost            *float64 `json:"leaseCost"`
	LeaseExpiry          *string  `json:"leaseExpiry"`
	IsTempAsset          bool     `json:"isTempAsset"`
	AssetImagePath       *string  `json:"assetImagePath"`
	PurchaseReceiptsPath *string  `json:"purchaseReceiptsPath"`
	WarrantyCardPath     *string  `json:"warrantyCardPath"`
}

// HistoryEntry is one assignment span as clients see it. ReturnedOn is the
// literal "Active" while the span is open.
type HistoryEntry struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	AssignedOn   *string `json:"assignedOn"`
	ReturnedOn   *string `json:"returnedOn"`
}

// CreateAssetInput carries everything needed to record a new asset.
type CreateAssetInput struct {
	AssetType      string
	SerialNumber   string
	Brand          string
	Model          string
	Specifications map[string]string
	PurchaseDate   *time.Time
	PurchaseCost   *float64
	GSTPaid        *float64
	WarrantyExpiry *time.Time
	LeaseCost      *float64
	LeaseExpiry    *time.Time
	IsRental       bool
	AssignedTo     string
	RepairStatus   bool
	IsTempAsset    bool
}

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
