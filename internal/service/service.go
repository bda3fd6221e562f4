package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/travel"
	"github.com/shenikar/emergency_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	ListIntakeOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error)
	ListAckOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error)
	GetFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetCache(ctx context.Context, incident *models.Incident) error
	InvalidateCache(ctx context.Context, id uuid.UUID) error
}

// ResponderRepository определяет контракт для работы с бд респондеров
type ResponderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Responder, error)
	ListAvailable(ctx context.Context) ([]*models.Responder, error)
	Update(ctx context.Context, responder *models.Responder) error
}

// AgencyRepository определяет контракт для работы с бд агентств
type AgencyRepository interface {
	ListActive(ctx context.Context, lat, lon *float64) ([]*models.Agency, error)
}

// ActivityRepository определяет контракт для журнала аудита/активности
type ActivityRepository interface {
	Append(ctx context.Context, record *models.ActivityRecord) error
	Exists(ctx context.Context, incidentID uuid.UUID, action string) (bool, error)
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.ActivityRecord, error)
}

// TxManager выполняет функцию внутри одной атомарной транзакции хранилища
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DispatchService определяет контракт для бизнес-логики диспетчеризации
type DispatchService interface {
	RankCandidates(ctx context.Context, incidentID uuid.UUID) ([]*models.DispatchCandidate, error)
	Assign(ctx context.Context, incidentID, agencyID uuid.UUID, responderID *uuid.UUID, actorID string) (*models.Incident, error)
	Acknowledge(ctx context.Context, incidentID, responderID uuid.UUID, actorID string) (*models.Incident, error)
	Decline(ctx context.Context, incidentID, responderID uuid.UUID, reason, actorID string) (*models.Incident, error)
	TryAutoAssign(ctx context.Context, incidentID uuid.UUID) (bool, error)
	ReleaseTimedOut(ctx context.Context, incidentID uuid.UUID) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListActivity(ctx context.Context, incidentID uuid.UUID) ([]*models.ActivityRecord, error)
}

type dispatchService struct {
	incidents  IncidentRepository
	responders ResponderRepository
	agencies   AgencyRepository
	activity   ActivityRepository
	txm        TxManager
	estimator  travel.Estimator
	publisher  webhook.Publisher
	logger     *logrus.Logger
	cfg        *config.Config
}

func NewDispatchService(
	incidents IncidentRepository,
	responders ResponderRepository,
	agencies AgencyRepository,
	activity ActivityRepository,
	txm TxManager,
	estimator travel.Estimator,
	publisher webhook.Publisher,
	logger *logrus.Logger,
	cfg *config.Config,
) DispatchService {
	return &dispatchService{
		incidents:  incidents,
		responders: responders,
		agencies:   agencies,
		activity:   activity,
		txm:        txm,
		estimator:  estimator,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// GetIncident получает инцидент по ID, сначала из кеша, затем из бд
func (s *dispatchService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.incidents.GetFromCache(ctx, id)
	if err != nil {
		// Сбой кеша не фатален, идем в бд
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.incidents.SetCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListActivity возвращает журнал активности инцидента
func (s *dispatchService) ListActivity(ctx context.Context, incidentID uuid.UUID) ([]*models.ActivityRecord, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "ListActivity",
		"incident_id": incidentID,
	})

	if _, err := s.incidents.GetByID(ctx, incidentID); err != nil {
		log.WithError(err).Warn("Attempted to list activity of a non-existent incident")
		return nil, fmt.Errorf("service: could not list activity: %w", err)
	}

	records, err := s.activity.ListByIncident(ctx, incidentID)
	if err != nil {
		log.WithError(err).Error("Failed to list activity records from repository")
		return nil, fmt.Errorf("service: could not list activity: %w", err)
	}
	return records, nil
}
