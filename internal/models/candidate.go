package models

import (
	"github.com/google/uuid"
)

// DispatchCandidate - транзиентная оценка пары (агентство, респондер) для одного инцидента.
// Никогда не персистится и не кешируется между вызовами ранжирования.
type DispatchCandidate struct {
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
