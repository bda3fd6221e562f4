package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// Assign атомарно закрепляет агентство (и, опционально, респондера) за инцидентом.
// Доступность респондера перепроверяется под блокировкой внутри той же транзакции,
// которая выполняет запись: из конкурирующих назначений выигрывает ровно одно.
func (s *dispatchService) Assign(ctx context.Context, incidentID, agencyID uuid.UUID, responderID *uuid.UUID, actorID string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "Assign",
		"incident_id": incidentID,
		"agency_id":   agencyID,
		"actor_id":    actorID,
	})
	log.Info("Attempting to assign incident")

	var updated *models.Incident
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		incident, err := s.incidents.GetByIDForUpdate(ctx, incidentID)
		if err != nil {
			return err
		}

		if incident.Status != models.IncidentStatusReceived && incident.Status != models.IncidentStatusUnderReview {
			return fmt.Errorf("incident %s is in status %q: %w", incidentID, incident.Status, errs.ErrConflict)
		}

		if responderID != nil {
			responder, err := s.responders.GetByIDForUpdate(ctx, *responderID)
			if err != nil {
				return err
			}
			if responder.Status != models.ResponderStatusAvailable {
				return fmt.Errorf("responder %s is in status %q: %w", responder.ID, responder.Status, errs.ErrConflict)
			}
			if responder.AgencyID != agencyID {
				return fmt.Errorf("responder %s does not belong to agency %s: %w", responder.ID, agencyID, errs.ErrConflict)
			}

			responder.Status = models.ResponderStatusAssigned
			responder.CurrentIncidentID = &incident.ID
			if err := s.responders.Update(ctx, responder); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		incident.Status = models.IncidentStatusAssigned
		incident.AssignedAgencyID = &agencyID
		incident.AssignedResponderID = responderID
		incident.DispatchedAt = &now
		incident.AcknowledgedAt = nil
		if err := s.incidents.Update(ctx, incident); err != nil {
			return err
		}

		action := models.ActionAssigned
		if actorID == models.SystemActorAutoPilot {
			action = models.ActionAutoAssigned
		}
		if err := s.activity.Append(ctx, &models.ActivityRecord{
			IncidentID: incident.ID,
			ActorID:    actorID,
			Action:     action,
			Note:       fmt.Sprintf("assigned to agency %s", agencyID),
		}); err != nil {
			return err
		}

		updated = incident
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to assign incident")
		return nil, fmt.Errorf("service: could not assign incident: %w", err)
	}

	// Внешние побочные эффекты - только после фиксации транзакции
	s.afterTransition(ctx, updated, updated.AssignedAgencyID, actorID, "incident assigned")
	log.Info("Incident assigned successfully")
	return updated, nil
}

// Acknowledge фиксирует подтверждение назначения респондером
func (s *dispatchService) Acknowledge(ctx context.Context, incidentID, responderID uuid.UUID, actorID string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "dispatch",
		"method":       "Acknowledge",
		"incident_id":  incidentID,
		"responder_id": responderID,
	})
	log.Info("Attempting to acknowledge assignment")

	var updated *models.Incident
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		incident, err := s.incidents.GetByIDForUpdate(ctx, incidentID)
		if err != nil {
			return err
		}

		if incident.AssignedResponderID == nil || *incident.AssignedResponderID != responderID {
			return fmt.Errorf("responder %s is not assigned to incident %s: %w", responderID, incidentID, errs.ErrForbidden)
		}
		if incident.AcknowledgedAt != nil {
			return fmt.Errorf("incident %s is already acknowledged: %w", incidentID, errs.ErrConflict)
		}

		now := time.Now().UTC()
		incident.AcknowledgedAt = &now
		if err := s.incidents.Update(ctx, incident); err != nil {
			return err
		}

		if err := s.activity.Append(ctx, &models.ActivityRecord{
			IncidentID: incident.ID,
			ActorID:    actorID,
			Action:     models.ActionAcknowledged,
			Note:       fmt.Sprintf("acknowledged by responder %s", responderID),
		}); err != nil {
			return err
		}

		updated = incident
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to acknowledge assignment")
		return nil, fmt.Errorf("service: could not acknowledge assignment: %w", err)
	}

	s.afterTransition(ctx, updated, updated.AssignedAgencyID, actorID, "assignment acknowledged")
	log.Info("Assignment acknowledged successfully")
	return updated, nil
}

// Decline - отказ респондера от назначения: инцидент возвращается в очередь,
// респондер освобождается, отказ запоминается в declined-наборе инцидента
func (s *dispatchService) Decline(ctx context.Context, incidentID, responderID uuid.UUID, reason, actorID string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "dispatch",
		"method":       "Decline",
		"incident_id":  incidentID,
		"responder_id": responderID,
		"reason":       reason,
	})
	log.Info("Attempting to decline assignment")

	updated, releasedAgency, err := s.release(ctx, incidentID, responderID, releaseParams{
		actorID:       actorID,
		action:        models.ActionDeclined,
		note:          fmt.Sprintf("declined by responder %s: %s", responderID, reason),
		addToDeclined: true,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to decline assignment")
		return nil, fmt.Errorf("service: could not decline assignment: %w", err)
	}

	s.afterTransition(ctx, updated, releasedAgency, actorID, "assignment declined")
	log.Info("Assignment declined, incident re-queued")
	return updated, nil
}

// ReleaseTimedOut - ремонт просроченного назначения (SLA подтверждения).
// Функционально это decline, инициированный временем, а не человеком:
// респондер НЕ добавляется в declined-набор, это не отказ, а молчание.
func (s *dispatchService) ReleaseTimedOut(ctx context.Context, incidentID uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "ReleaseTimedOut",
		"incident_id": incidentID,
	})

	var (
		updated        *models.Incident
		releasedAgency *uuid.UUID
	)
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		incident, err := s.incidents.GetByIDForUpdate(ctx, incidentID)
		if err != nil {
			return err
		}
		// Перепроверка под блокировкой: между сканом монитора и ремонтом
		// респондер мог успеть подтвердить назначение
		if incident.Status != models.IncidentStatusAssigned || incident.AcknowledgedAt != nil {
			return fmt.Errorf("incident %s is no longer pending acknowledgment: %w", incidentID, errs.ErrConflict)
		}
		releasedAgency = incident.AssignedAgencyID

		// Назначение только на агентство (без конкретного юнита) чинится так же:
		// инцидент возвращается в очередь, освобождать при этом некого
		if err := s.releaseLocked(ctx, incident, incident.AssignedResponderID, releaseParams{
			actorID:       models.SystemActorSLAMonitor,
			action:        models.ActionAckTimeout,
			note:          "Assignment Timeout — re-queued",
			addToDeclined: false,
		}); err != nil {
			return err
		}
		updated = incident
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to release timed out assignment")
		return fmt.Errorf("service: could not release timed out assignment: %w", err)
	}

	s.afterTransition(ctx, updated, releasedAgency, models.SystemActorSLAMonitor, "assignment timed out, incident re-queued")
	log.Info("Timed out assignment released")
	return nil
}

// releaseParams параметризует общий примитив освобождения:
// человеческий отказ и таймаут SLA различаются только происхождением
type releaseParams struct {
	actorID       string
	action        string
	note          string
	addToDeclined bool
}

// release выполняет освобождение в собственной транзакции с проверкой прав.
// Возвращает обновленный инцидент и агентство, закрепленное до освобождения.
func (s *dispatchService) release(ctx context.Context, incidentID, responderID uuid.UUID, p releaseParams) (*models.Incident, *uuid.UUID, error) {
	var (
		updated        *models.Incident
		releasedAgency *uuid.UUID
	)
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		incident, err := s.incidents.GetByIDForUpdate(ctx, incidentID)
		if err != nil {
			return err
		}
		if incident.AssignedResponderID == nil || *incident.AssignedResponderID != responderID {
			return fmt.Errorf("responder %s is not assigned to incident %s: %w", responderID, incidentID, errs.ErrForbidden)
		}
		if incident.Status != models.IncidentStatusAssigned {
			return fmt.Errorf("incident %s is in status %q: %w", incidentID, incident.Status, errs.ErrConflict)
		}
		releasedAgency = incident.AssignedAgencyID

		if err := s.releaseLocked(ctx, incident, &responderID, p); err != nil {
			return err
		}
		updated = incident
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, releasedAgency, nil
}

// releaseLocked возвращает инцидент в очередь и освобождает респондера.
// responderID равен nil для назначений только на агентство.
// Вызывается только с инцидентом, уже заблокированным в текущей транзакции.
func (s *dispatchService) releaseLocked(ctx context.Context, incident *models.Incident, responderID *uuid.UUID, p releaseParams) error {
	incident.Status = models.IncidentStatusReceived
	incident.AssignedResponderID = nil
	incident.DispatchedAt = nil
	incident.AcknowledgedAt = nil
	if s.cfg.ReleaseAgencyOnDecline {
		incident.AssignedAgencyID = nil
	}
	if p.addToDeclined && responderID != nil && !incident.HasDeclined(*responderID) {
		incident.DeclinedResponderIDs = append(incident.DeclinedResponderIDs, *responderID)
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return err
	}

	if responderID != nil {
		responder, err := s.responders.GetByIDForUpdate(ctx, *responderID)
		if err != nil {
			return err
		}
		responder.Status = models.ResponderStatusAvailable
		responder.CurrentIncidentID = nil
		if err := s.responders.Update(ctx, responder); err != nil {
			return err
		}
	}

	return s.activity.Append(ctx, &models.ActivityRecord{
		IncidentID: incident.ID,
		ActorID:    p.actorID,
		Action:     p.action,
		Note:       p.note,
	})
}

// afterTransition инвалидирует кеш и публикует уведомление после фиксации.
// Агентство аудитории передается явно: при освобождении само поле инцидента
// к этому моменту уже очищено. Сбои здесь не откатывают переход, только логируются.
func (s *dispatchService) afterTransition(ctx context.Context, incident *models.Incident, agencyID *uuid.UUID, actorID, note string) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"incident_id": incident.ID,
	})

	if err := s.incidents.InvalidateCache(ctx, incident.ID); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	audience := []string{webhook.AudienceAdmins}
	if agencyID != nil {
		audience = append(audience, webhook.AudienceAgency(*agencyID))
	}
	event := webhook.DispatchEvent{
		IncidentID: incident.ID,
		Status:     incident.Status,
		AgencyID:   agencyID,
		Audience:   audience,
		ActorID:    actorID,
		Note:       note,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Error("Failed to publish incident updated event")
	}
}
