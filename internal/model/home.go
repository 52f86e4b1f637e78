package model

// HomeHeader carries dashboard metadata reported alongside the snapshot.
type HomeHeader struct {
	TodayNotificationCount int     `json:"todayNotificationCount"`
	AsOf                   APITime `json:"asOf"`
}

// HomeSnapshot is the aggregate dashboard state for the main plant,
// returned by the home endpoint and refreshed on a short poll.
type HomeSnapshot struct {
	PlantID          int        `json:"plantId"`
	PlantName        string     `json:"plantName"`
	CharacterCode    int        `json:"characterCode"`
	ImageURL         string     `json:"imageUrl"`
	HealthScore      int        `json:"healthScore"`
	WaterLevelStatus string     `json:"waterLevelStatus"`
	NutrientStatus   string     `json:"nutrientStatus"`
	Temperature      *float64   `json:"temperature"`
	Humidity         *float64   `json:"humidity"`
	Header           HomeHeader `json:"header"`
}

// Level derives the character's display level from its character code.
func (h HomeSnapshot) Level() int {
	return h.CharacterCode%3 + 1
}

// statusOk reports whether a server status string means "no action needed".
func statusOk(status string) bool {
	return status == "OK" || status == "NORMAL"
}

// WaterNeedsCheck reports whether the water card should show an alert.
func (h HomeSnapshot) WaterNeedsCheck() bool {
	return !statusOk(h.WaterLevelStatus)
}

// NutrientNeedsCheck reports whether the nutrient card should show an alert.
func (h HomeSnapshot) NutrientNeedsCheck() bool {
	return !statusOk(h.NutrientStatus)
}
