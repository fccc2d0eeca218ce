package summary

// SummaryRow is one line of the summarydata view. Key casing matches what
// the reporting table and the XLSX export expect.
type SummaryRow struct {
	AssetType  string `json:"AssetType"`
	Department string `json:"Department"`
	Brand      string `json:"Brand"`
	Model      string `json:"Model"`
	Count      int64  `json:"Count"`
}
