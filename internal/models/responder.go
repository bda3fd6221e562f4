package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы респондера
const (
	ResponderStatusAvailable = "available"
	ResponderStatusAssigned  = "assigned"
	ResponderStatusEnRoute   = "en_route"
	ResponderStatusOnScene   = "on_scene"
	ResponderStatusOffline   = "offline"
)

type Responder struct {
	ID                uuid.UUID  `json:"id"`
	AgencyID          uuid.UUID  `json:"agency_id"`
	Name              string     `json:"name"`
	Status            string     `json:"status"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	CurrentIncidentID *uuid.UUID `json:"current_incident_id,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
