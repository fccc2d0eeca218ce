package catalog

// SpecField describes one input field on the asset form for a given type.
type SpecField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

// TypeSpecifications groups the fields of one asset type.
type TypeSpecifications struct {
	Fields []SpecField `json:"fields"`
}

// Brand pairs a brand name with its known models.
type Brand struct {
	Name   string   `json:"brand"`
	Models []string `json:"models"`
}

// assetTypesResponse carries the extra "source" marker the standard envelope
// has no slot for. Source is "fallback" when the built-in list was served.
type assetTypesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
	Source  string   `json:"source,omitempty"`
}
