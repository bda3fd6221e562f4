package models

import (
	"time"

	"github.com/google/uuid"
)

// Действия в журнале активности
const (
	ActionAssigned     = "incident_assigned"
	ActionAutoAssigned = "incident_auto_assigned"
	ActionAcknowledged = "incident_acknowledged"
	ActionDeclined     = "incident_declined"
	ActionAckTimeout   = "assignment_timeout"
	ActionIntakeBreach = "sla_intake_breach"
)

// Системные акторы (отличимы от человеческих по фиксированным идентификаторам)
const (
	SystemActorAutoPilot  = "autopilot"
	SystemActorSLAMonitor = "sla-monitor"
)

// ActivityRecord - запись аудита/активности, только для добавления
type ActivityRecord struct {
	ID         int64     `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}
