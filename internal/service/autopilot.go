package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// TryAutoAssign оценивает, подходит ли критический инцидент для автономного
// назначения, и при выполнении всех порогов фиксирует его тем же путем, что
// и ручной Assign. Невыполненный порог или проигранная гонка - не ошибка:
// триггер молча уступает ручной диспетчеризации.
func (s *dispatchService) TryAutoAssign(ctx context.Context, incidentID uuid.UUID) (bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "TryAutoAssign",
		"incident_id": incidentID,
	})
	log.Info("Evaluating incident for auto-assignment")

	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident for auto-assignment")
		return false, fmt.Errorf("service: could not evaluate auto-assignment: %w", err)
	}

	if incident.Status != models.IncidentStatusReceived {
		log.WithField("status", incident.Status).Info("Incident is not awaiting dispatch, auto-assignment skipped")
		return false, nil
	}
	if incident.Severity == nil || *incident.Severity < s.cfg.AutoAssignMinSeverity {
		log.Info("Incident severity below auto-assignment threshold, skipped")
		return false, nil
	}

	candidates, err := s.RankCandidates(ctx, incidentID)
	if err != nil {
		return false, fmt.Errorf("service: could not evaluate auto-assignment: %w", err)
	}
	if len(candidates) == 0 {
		log.Info("No candidates available, auto-assignment deferred to manual dispatch")
		return false, nil
	}

	top := candidates[0]
	if top.ResponderID == nil {
		log.Info("Top candidate has no concrete responder, auto-assignment deferred")
		return false, nil
	}
	if top.DistanceKm > s.cfg.AutoAssignMaxDistanceKm {
		log.WithField("distance_km", top.DistanceKm).Info("Top candidate is too far, auto-assignment deferred")
		return false, nil
	}
	if top.TotalScore < s.cfg.AutoAssignMinScore {
		log.WithField("total_score", top.TotalScore).Info("Top candidate score below threshold, auto-assignment deferred")
		return false, nil
	}

	// Ранжирование не транзакционно и могло устареть: Assign перепроверит
	// доступность респондера под блокировкой и вернет Conflict при гонке
	if _, err := s.Assign(ctx, incidentID, top.AgencyID, top.ResponderID, models.SystemActorAutoPilot); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			log.WithError(err).Info("Auto-assignment lost the race, deferred to manual dispatch")
			return false, nil
		}
		log.WithError(err).Error("Auto-assignment failed")
		return false, fmt.Errorf("service: could not auto-assign incident: %w", err)
	}

	log.WithField("responder_id", top.ResponderID).Info("Incident auto-assigned")
	return true, nil
}
