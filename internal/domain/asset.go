package domain

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

// Asset states.
const (
	AssetActive            AssetStatus = "Active"
	AssetUnderConstruction AssetStatus = "Under Construction"
	AssetInactive          AssetStatus = "Inactive"
)

// Valid reports whether s is a known asset status.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetUnderConstruction, AssetInactive:
		return true
	default:
		return false
	}
}

// Address is the postal location of an asset.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Asset is a physical location (a restaurant, a hotel) of a given asset type.
type Asset struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" validate:"required"`
	Location    Address     `json:"location"`
	AssetTypeID string      `json:"assetTypeId" validate:"required"`
	Status      AssetStatus `json:"status"`
}

// Clone returns a copy of the asset.
func (a Asset) Clone() Asset {
	return a
}
