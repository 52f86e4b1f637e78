package model

// Period is a date range reported by the history endpoint.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GrowthPoint is one day's measured plant size. Height and Width are nil
// on days with no measurement.
type GrowthPoint struct {
	Date   string   `json:"date"`
	Height *float64 `json:"height"`
	Width  *float64 `json:"width"`
}

// GrowthGraph is the measured-size series for the history chart.
type GrowthGraph struct {
	Unit   string        `json:"unit"`
	Period Period        `json:"period"`
	Data   []GrowthPoint `json:"data"`
}

// AlertPoint is one day's count of sensor alerts by kind.
type AlertPoint struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Water    int    `json:"water"`
	Nutrient int    `json:"nutrient"`
}

// AlertGraph is the sensor-alert series for the history chart.
type AlertGraph struct {
	Period Period       `json:"period"`
	Data   []AlertPoint `json:"data"`
}

// PlantImage is the most recent captured photo pair for a plant.
type PlantImage struct {
	ImageURLTop  string  `json:"imageUrl_top"`
	ImageURLSide string  `json:"imageUrl_side"`
	CapturedAt   APITime `json:"capturedAt"`
}

// History is the growth-history payload for a single plant.
type History struct {
	PlantID          int         `json:"plantId"`
	PlantName        string      `json:"plantName"`
	CurrentImage     *PlantImage `json:"currentImage"`
	GrowthGraph      GrowthGraph `json:"growthGraph"`
	SensorAlertGraph AlertGraph  `json:"sensorAlertGraph"`
}
