package models

import (
	"github.com/google/uuid"
)

// Типы агентств
const (
	AgencyTypePolice  = "police"
	AgencyTypeFire    = "fire"
	AgencyTypeMedical = "medical"
	AgencyTypeUtility = "utility"
	AgencyTypeOther   = "other"
)

type Agency struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Active bool      `json:"active"`
	// HasJurisdiction - задан ли у агентства полигон юрисдикции
	HasJurisdiction bool `json:"has_jurisdiction"`
	// InJurisdiction - попадает ли точка инцидента в полигон (вычисляется в запросе)
	InJurisdiction bool `json:"in_jurisdiction"`
}
