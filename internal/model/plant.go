package model

// Plant growth modes accepted by the service.
const (
	ModeAuto   = "AUTO"
	ModeManual = "MANUAL"
)

// SensorKind identifies which sensor a card or reading describes.
type SensorKind string

const (
	SensorWater    SensorKind = "water"
	SensorNutrient SensorKind = "nutrient"
)

// Sensor level classifications derived from a reading and its ideal band.
const (
	LevelLow    = "low"
	LevelNormal = "normal"
	LevelHigh   = "high"
)

// Plant is a registered plant profile.
type Plant struct {
	// PlantID is the server-assigned identifier.
	PlantID int `json:"plant_id"`

	// Name is the user-chosen nickname for the plant.
	Name string `json:"name"`

	// Species is the display name of the plant's species.
	Species string `json:"species"`

	// IsMain marks the plant shown on the home dashboard.
	IsMain bool `json:"is_main"`
}

// Species is a selectable plant species.
type Species struct {
	SpeciesID int    `json:"speciesId"`
	Name      string `json:"name"`
}

// SensorCard is a detail reading for a single sensor, shown when the user
// opens the water or nutrient signpost on the dashboard.
type SensorCard struct {
	Kind       SensorKind
	PlantID    int
	MeasuredAt APITime
	Current    float64
	IdealMin   float64
	IdealMax   float64
}

// Level classifies the current reading against the ideal band.
func (c SensorCard) Level() string {
	if c.Current < c.IdealMin {
		return LevelLow
	}
	if c.Current > c.IdealMax {
		return LevelHigh
	}
	return LevelNormal
}
