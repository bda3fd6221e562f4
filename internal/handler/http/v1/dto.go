package v1

import (
	"time"

	"github.com/google/uuid"
)

// AssignRequest DTO для назначения инцидента
// @Description DTO для назначения инцидента
type AssignRequest struct {
	AgencyID    uuid.UUID  `json:"agency_id" validate:"required"`
	ResponderID *uuid.UUID `json:"responder_id,omitempty"`
	ActorID     string     `json:"actor_id" validate:"required"`
}

// AcknowledgeRequest DTO для подтверждения назначения
// @Description DTO для подтверждения назначения
type AcknowledgeRequest struct {
	ResponderID uuid.UUID `json:"responder_id" validate:"required"`
	ActorID     string    `json:"actor_id" validate:"required"`
}

// DeclineRequest DTO для отказа от назначения
// @Description DTO для отказа от назначения
type DeclineRequest struct {
	ResponderID uuid.UUID `json:"responder_id" validate:"required"`
	Reason      string    `json:"reason" validate:"required,min=2,max=255"`
	ActorID     string    `json:"actor_id" validate:"required"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                   uuid.UUID   `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description,omitempty"`
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

// CandidateResponse DTO для ответа с оценкой кандидата
// @Description DTO для ответа с оценкой кандидата
type CandidateResponse struct {
	AgencyID          uuid.UUID  `json:"agency_id"`
	AgencyName        string     `json:"agency_name"`
	AgencyType        string     `json:"agency_type"`
	ResponderID       *uuid.UUID `json:"responder_id,omitempty"`
	JurisdictionScore float64    `json:"jurisdiction_score"`
	SeverityScore     float64    `json:"severity_score"`
	ProximityScore    float64    `json:"proximity_score"`
	CategoryBonus     float64    `json:"category_bonus"`
	DistanceKm        float64    `json:"distance_km"`
	DurationMin       float64    `json:"duration_min"`
	TotalScore        float64    `json:"total_score"`
}

// ActivityResponse DTO для записи журнала активности
// @Description DTO для записи журнала активности
type ActivityResponse struct {
	ID         int64     `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AutoAssignResponse DTO для результата авто-назначения
// @Description DTO для результата авто-назначения
type AutoAssignResponse struct {
	Triggered bool `json:"triggered"`
}

// SlaReportResponse DTO для итога прохода проверок SLA
// @Description DTO для итога прохода проверок SLA
type SlaReportResponse struct {
	IntakeBreaches int `json:"intake_breaches"`
	AckTimeouts    int `json:"ack_timeouts"`
}
