package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жизненного цикла инцидента
const (
	IncidentStatusReceived    = "received"
	IncidentStatusUnderReview = "under_review"
	IncidentStatusAssigned    = "assigned"
	IncidentStatusResponding  = "responding"
	IncidentStatusResolved    = "resolved"
)

type Incident struct {
	ID                   uuid.UUID   `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Status               string      `json:"status"`
	Severity             *int        `json:"severity,omitempty"`
	Category             *string     `json:"category,omitempty"`
	Latitude             *float64    `json:"latitude,omitempty"`
	Longitude            *float64    `json:"longitude,omitempty"`
	AssignedAgencyID     *uuid.UUID  `json:"assigned_agency_id,omitempty"`
	AssignedResponderID  *uuid.UUID  `json:"assigned_responder_id,omitempty"`
	DispatchedAt         *time.Time  `json:"dispatched_at,omitempty"`
	AcknowledgedAt       *time.Time  `json:"acknowledged_at,omitempty"`
	DeclinedResponderIDs []uuid.UUID `json:"declined_responder_ids"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// HasDeclined проверяет, отклонял ли респондер этот инцидент ранее
func (i *Incident) HasDeclined(responderID uuid.UUID) bool {
	for _, id := range i.DeclinedResponderIDs {
		if id == responderID {
			return true
		}
	}
	return false
}
