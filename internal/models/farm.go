package models

import "time"

// Farm представляет ферму пользователя.
type Farm struct {
	ID           int       `json:"id"`
	UserUID      string    `json:"-"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	SizeHectares float64   `json:"size_hectares"`
	SoilType     string    `json:"soil_type"`
	CreatedAt    time.Time `json:"created_at"`
}
