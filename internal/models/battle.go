package models

type BattleType string

const (
	BattleTypeNaval             BattleType = "Naval"
	BattleTypeSiege             BattleType = "Siege"
	BattleTypePitched           BattleType = "Pitched Battle"
	BattleTypeGuerilla          BattleType = "Guerilla Action"
	BattleTypeAmphibiousAssault BattleType = "Amphibious Assault"
	BattleTypeAir               BattleType = "Air Battle"
)

func (t BattleType) String() string {
	return string(t)
}

// Known reports whether t is one of the recognised battle types. Unknown
// values are kept as loaded and get the default presentation.
func (t BattleType) Known() bool {
	switch t {
	case BattleTypeNaval, BattleTypeSiege, BattleTypePitched,
		BattleTypeGuerilla, BattleTypeAmphibiousAssault, BattleTypeAir:
		return true
	default:
		return false
	}
}

type BattleRecord struct {
	ID            int // insertion index within the loaded dataset
	Battle        string
	Year          int // astronomical numbering, negative for BCE
	Latitude      float64
	Longitude     float64
	War           string
	BattleType    BattleType
	Description   string
	BelligerentsA string
	BelligerentsB string
	CommandersA   string
	CommandersB   string
	Result        string
	WikiURL       string
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (b *BattleRecord) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
}
