package api

import (
	"context"
	"fmt"

	"github.com/ssukssuk/planterm/internal/model"
)

// ListPlants fetches all registered plant profiles.
func (c *Client) ListPlants(ctx context.Context) ([]model.Plant, error) {
	var plants []model.Plant
	if err := c.Get(ctx, "/plants", &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// MainPlant returns the plant flagged as main, falling back to the first
// registered plant. Returns nil when no plant is registered.
func (c *Client) MainPlant(ctx context.Context) (*model.Plant, error) {
	plants, err := c.ListPlants(ctx)
	if err != nil {
		return nil, err
	}
	if len(plants) == 0 {
		return nil, nil
	}
	for i := range plants {
		if plants[i].IsMain {
			return &plants[i], nil
		}
	}
	return &plants[0], nil
}

// ListSpecies fetches the selectable plant species.
func (c *Client) ListSpecies(ctx context.Context) ([]model.Species, error) {
	var species []model.Species
	if err := c.Get(ctx, "/plants/species", &species); err != nil {
		return nil, err
	}
	return species, nil
}

// CreatePlant registers a new plant profile bound to a paired device.
func (c *Client) CreatePlant(ctx context.Context, name string, speciesID int, deviceID string) (*model.Plant, error) {
	var plant model.Plant
	err := c.Post(ctx, "/plants", map[string]interface{}{
		"name":      name,
		"speciesId": speciesID,
		"deviceId":  deviceID,
	}, &plant)
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// UpdatePlant renames an existing plant profile.
func (c *Client) UpdatePlant(ctx context.Context, plantID int, name string) error {
	return c.Patch(ctx, fmt.Sprintf("/plants/%d", plantID), map[string]string{
		"name": name,
	}, nil)
}

// waterCard is the wire shape of the water sensor detail endpoint.
type waterCard struct {
	PlantID    int           `json:"plantId"`
	MeasuredAt model.APITime `json:"measuredAt"`
	Current    float64       `json:"current_water"`
	IdealMin   float64       `json:"ideal_min"`
	IdealMax   float64       `json:"ideal_max"`
}

// nutrientCard is the wire shape of the nutrient sensor detail endpoint.
type nutrientCard struct {
	PlantID    int           `json:"plantId"`
	MeasuredAt model.APITime `json:"measuredAt"`
	Current    float64       `json:"current_nutrient"`
	IdealMin   float64       `json:"ideal_min"`
	IdealMax   float64       `json:"ideal_max"`
}

// WaterSensorCard fetches the current water-level reading for a plant.
func (c *Client) WaterSensorCard(ctx context.Context, plantID int) (*model.SensorCard, error) {
	var card waterCard
	err := c.Get(ctx, fmt.Sprintf("/plants/%d/sensors/water", plantID), &card)
	if err != nil {
		return nil, err
	}
	return &model.SensorCard{
		Kind:       model.SensorWater,
		PlantID:    card.PlantID,
		MeasuredAt: card.MeasuredAt,
		Current:    card.Current,
		IdealMin:   card.IdealMin,
		IdealMax:   card.IdealMax,
	}, nil
}

// NutrientSensorCard fetches the current nutrient reading for a plant.
func (c *Client) NutrientSensorCard(ctx context.Context, plantID int) (*model.SensorCard, error) {
	var card nutrientCard
	err := c.Get(ctx, fmt.Sprintf("/plants/%d/sensors/nutrient", plantID), &card)
	if err != nil {
		return nil, err
	}
	return &model.SensorCard{
		Kind:       model.SensorNutrient,
		PlantID:    card.PlantID,
		MeasuredAt: card.MeasuredAt,
		Current:    card.Current,
		IdealMin:   card.IdealMin,
		IdealMax:   card.IdealMax,
	}, nil
}
