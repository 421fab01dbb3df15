package locations

// Region is the top level of the Philippine address hierarchy.
type Region struct {
	RegionID    int    `db:"region_id" json:"regionId"`
	Name        string `db:"region_name" json:"name"`
	Description string `db:"region_description" json:"description"`
}

// Province belongs to a region.
type Province struct {
	ProvinceID int    `db:"province_id" json:"provinceId"`
	RegionID   int    `db:"region_id" json:"regionId"`
	Name       string `db:"province_name" json:"name"`
}

// Municipality is a city or municipality within a province.
type Municipality struct {
	MunicipalityID int    `db:"municipality_id" json:"municipalityId"`
	ProvinceID     int    `db:"province_id" json:"provinceId"`
	Name           string `db:"municipality_name" json:"name"`
}

// Barangay is the smallest administrative unit.
type Barangay struct {
	BarangayID     int    `db:"barangay_id" json:"barangayId"`
	MunicipalityID int    `db:"municipality_id" json:"municipalityId"`
	Name           string `db:"barangay_name" json:"name"`
}
