// internal/domain/models/geo.go
package models

// GeoLevel is one administrative level of the address cascade.
type GeoLevel string

const (
	LevelRegion   GeoLevel = "region"
	LevelProvince GeoLevel = "province"
	LevelCity     GeoLevel = "city"
	LevelBarangay GeoLevel = "barangay"
)

// GeoLevels is the cascade order, parent first.
var GeoLevels = []GeoLevel{LevelRegion, LevelProvince, LevelCity, LevelBarangay}

// Child returns the level below l, or "" for barangay.
func (l GeoLevel) Child() GeoLevel {
	for i, lv := range GeoLevels {
		if lv == l && i+1 < len(GeoLevels) {
			return GeoLevels[i+1]
		}
	}
	return ""
}

// Descendants returns every level below l, nearest first.
func (l GeoLevel) Descendants() []GeoLevel {
	for i, lv := range GeoLevels {
		if lv == l {
			return GeoLevels[i+1:]
		}
	}
	return nil
}

// Valid reports whether l is one of the four cascade levels.
func (l GeoLevel) Valid() bool {
	for _, lv := range GeoLevels {
		if lv == l {
			return true
		}
	}
	return false
}

// GeoOption is a selectable entry at one level.
type GeoOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
