package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTryAutoAssign_Success(t *testing.T) {
	// Подготовка: критический пожар, пожарный расчет в сотне метров
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 5)

	agency := &models.Agency{
		ID:             uuid.New(),
		Name:           "Пожарная часть 1",
		Type:           models.AgencyTypeFire,
		Active:         true,
		InJurisdiction: true,
	}
	responder := &models.Responder{
		ID:        uuid.New(),
		AgencyID:  agency.ID,
		Status:    models.ResponderStatusAvailable,
		Latitude:  floatPtr(testIncidentLat + 0.0006),
		Longitude: floatPtr(testIncidentLon),
	}

	// Ожидания: проверка порогов, ранжирование, затем обычный путь Assign
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(2)
	m.agencies.EXPECT().ListActive(ctx, incident.Latitude, incident.Longitude).
		Return([]*models.Agency{agency}, nil).Times(1)
	m.responders.EXPECT().ListAvailable(ctx).
		Return([]*models.Responder{responder}, nil).Times(1)

	expectPassthroughTx(m)
	m.incidents.EXPECT().GetByIDForUpdate(gomock.Any(), incidentID).Return(incident, nil).Times(1)
	m.responders.EXPECT().GetByIDForUpdate(gomock.Any(), responder.ID).Return(responder, nil).Times(1)
	m.responders.EXPECT().Update(gomock.Any(), responder).Return(nil).Times(1)
	m.incidents.EXPECT().Update(gomock.Any(), incident).Return(nil).Times(1)

	var appended *models.ActivityRecord
	m.activity.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.ActivityRecord) error {
			appended = record
			return nil
		}).
		Times(1)

	m.incidents.EXPECT().InvalidateCache(gomock.Any(), incidentID).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки: назначение состоялось от имени автопилота
	require.NoError(t, err)
	assert.True(t, triggered)
	assert.Equal(t, models.IncidentStatusAssigned, incident.Status)

	require.NotNil(t, appended)
	assert.Equal(t, models.ActionAutoAssigned, appended.Action)
	assert.Equal(t, models.SystemActorAutoPilot, appended.ActorID)
}

func TestTryAutoAssign_SeverityBelowThreshold(t *testing.T) {
	// Подготовка
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 4)

	// Ожидания: дальше проверки серьезности дело не идет
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.False(t, triggered)
}

func TestTryAutoAssign_NotAwaitingDispatch(t *testing.T) {
	// Подготовка: инцидент уже назначен
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 5)
	incident.Status = models.IncidentStatusAssigned

	// Ожидания
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.False(t, triggered)
}

func TestTryAutoAssign_TopCandidateTooFar(t *testing.T) {
	// Подготовка: единственный расчет в нескольких километрах
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 5)

	agency := &models.Agency{
		ID:             uuid.New(),
		Type:           models.AgencyTypeFire,
		Active:         true,
		InJurisdiction: true,
	}
	farResponder := &models.Responder{
		ID:        uuid.New(),
		AgencyID:  agency.ID,
		Status:    models.ResponderStatusAvailable,
		Latitude:  floatPtr(testIncidentLat + 0.0450),
		Longitude: floatPtr(testIncidentLon),
	}

	// Ожидания
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(2)
	m.agencies.EXPECT().ListActive(ctx, incident.Latitude, incident.Longitude).
		Return([]*models.Agency{agency}, nil).Times(1)
	m.responders.EXPECT().ListAvailable(ctx).
		Return([]*models.Responder{farResponder}, nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки: назначение отложено до ручной диспетчеризации
	require.NoError(t, err)
	assert.False(t, triggered)
}

func TestTryAutoAssign_NoConcreteResponder(t *testing.T) {
	// Подготовка: только кандидат уровня агентства, без юнита
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 5)

	agency := &models.Agency{
		ID:             uuid.New(),
		Type:           models.AgencyTypeFire,
		Active:         true,
		InJurisdiction: true,
	}

	// Ожидания
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(2)
	m.agencies.EXPECT().ListActive(ctx, incident.Latitude, incident.Longitude).
		Return([]*models.Agency{agency}, nil).Times(1)
	m.responders.EXPECT().ListAvailable(ctx).Return([]*models.Responder{}, nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.False(t, triggered)
}

func TestTryAutoAssign_LostRace_NotAnError(t *testing.T) {
	// Подготовка: между ранжированием и назначением респондера успели занять
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	incident := fireIncident(incidentID, 5)

	agency := &models.Agency{
		ID:             uuid.New(),
		Type:           models.AgencyTypeFire,
		Active:         true,
		InJurisdiction: true,
	}
	responder := &models.Responder{
		ID:        uuid.New(),
		AgencyID:  agency.ID,
		Status:    models.ResponderStatusAvailable,
		Latitude:  floatPtr(testIncidentLat + 0.0006),
		Longitude: floatPtr(testIncidentLon),
	}

	// Ожидания
	m.incidents.EXPECT().GetByID(ctx, incidentID).Return(incident, nil).Times(2)
	m.agencies.EXPECT().ListActive(ctx, incident.Latitude, incident.Longitude).
		Return([]*models.Agency{agency}, nil).Times(1)
	m.responders.EXPECT().ListAvailable(ctx).
		Return([]*models.Responder{responder}, nil).Times(1)

	expectPassthroughTx(m)
	m.incidents.EXPECT().GetByIDForUpdate(gomock.Any(), incidentID).Return(incident, nil).Times(1)
	busy := &models.Responder{
		ID:       responder.ID,
		AgencyID: agency.ID,
		Status:   models.ResponderStatusEnRoute,
	}
	m.responders.EXPECT().GetByIDForUpdate(gomock.Any(), responder.ID).Return(busy, nil).Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки: конфликт проглатывается, автопилот уступает
	require.NoError(t, err)
	assert.False(t, triggered)
}

func TestTryAutoAssign_IncidentNotFound(t *testing.T) {
	// Подготовка
	service, m := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.incidents.EXPECT().GetByID(ctx, incidentID).
		Return(nil, fmt.Errorf("incident with id %s: %w", incidentID, errs.ErrNotFound)).
		Times(1)

	// Действие
	triggered, err := service.TryAutoAssign(ctx, incidentID)

	// Проверки: отсутствие инцидента, в отличие от порогов, это ошибка
	require.Error(t, err)
	assert.False(t, triggered)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
