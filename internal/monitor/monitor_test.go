package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestMonitor — вспомогательная функция для создания монитора с моками
func newTestMonitor(t *testing.T) (*Monitor, *mocks.MockIncidentRepository, *mocks.MockActivityRepository, *mocks.MockDispatchService) {
	ctrl := gomock.NewController(t)
	incidents := mocks.NewMockIncidentRepository(ctrl)
	activity := mocks.NewMockActivityRepository(ctrl)
	releaser := mocks.NewMockDispatchService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		IntakeSLA:        10 * time.Minute,
		AckSLA:           90 * time.Second,
		SLACheckInterval: 30 * time.Second,
	}
	return New(incidents, activity, releaser, logger, cfg), incidents, activity, releaser
}

func overdueIncident(status string) *models.Incident {
	return &models.Incident{
		ID:     uuid.New(),
		Status: status,
	}
}

func TestRunSlaChecks_IntakeBreachFlagged(t *testing.T) {
	// Подготовка: один инцидент застрял на первичном разборе
	monitor, incidents, activity, _ := newTestMonitor(t)
	ctx := context.Background()
	stuck := overdueIncident(models.IncidentStatusReceived)

	// Ожидания
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{stuck}, nil).Times(1)
	activity.EXPECT().Exists(ctx, stuck.ID, models.ActionIntakeBreach).
		Return(false, nil).Times(1)

	var appended *models.ActivityRecord
	activity.EXPECT().
		Append(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, record *models.ActivityRecord) error {
			appended = record
			return nil
		}).
		Times(1)

	incidents.EXPECT().ListAckOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{}, nil).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, report.IntakeBreaches)
	assert.Equal(t, 0, report.AckTimeouts)

	require.NotNil(t, appended)
	assert.Equal(t, stuck.ID, appended.IncidentID)
	assert.Equal(t, models.ActionIntakeBreach, appended.Action)
	assert.Equal(t, models.SystemActorSLAMonitor, appended.ActorID)
	assert.Equal(t, "SLA Breach — escalate", appended.Note)
}

func TestRunSlaChecks_IntakeBreachIdempotent(t *testing.T) {
	// Подготовка: инцидент уже помечен предыдущим проходом
	monitor, incidents, activity, _ := newTestMonitor(t)
	ctx := context.Background()
	stuck := overdueIncident(models.IncidentStatusUnderReview)

	// Ожидания: повторной записи нет
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{stuck}, nil).Times(1)
	activity.EXPECT().Exists(ctx, stuck.ID, models.ActionIntakeBreach).
		Return(true, nil).Times(1)
	incidents.EXPECT().ListAckOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{}, nil).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 0, report.IntakeBreaches)
}

func TestRunSlaChecks_AckTimeoutRepaired(t *testing.T) {
	// Подготовка: назначение без подтверждения дольше порога
	monitor, incidents, _, releaser := newTestMonitor(t)
	ctx := context.Background()
	unacked := overdueIncident(models.IncidentStatusAssigned)

	// Ожидания
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{}, nil).Times(1)
	incidents.EXPECT().ListAckOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{unacked}, nil).Times(1)
	releaser.EXPECT().ReleaseTimedOut(ctx, unacked.ID).Return(nil).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, report.AckTimeouts)
}

func TestRunSlaChecks_AgencyOnlyAckTimeoutRepaired(t *testing.T) {
	// Подготовка: назначение только на агентство, подтверждать его некому
	monitor, incidents, _, releaser := newTestMonitor(t)
	ctx := context.Background()
	agencyID := uuid.New()
	unacked := overdueIncident(models.IncidentStatusAssigned)
	unacked.AssignedAgencyID = &agencyID

	// Ожидания: ремонт идет тем же путем, что и для назначений с юнитом
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{}, nil).Times(1)
	incidents.EXPECT().ListAckOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{unacked}, nil).Times(1)
	releaser.EXPECT().ReleaseTimedOut(ctx, unacked.ID).Return(nil).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, report.AckTimeouts)
}

func TestRunSlaChecks_RepairFailureDoesNotAbortPass(t *testing.T) {
	// Подготовка: два просроченных назначения, ремонт первого падает
	monitor, incidents, _, releaser := newTestMonitor(t)
	ctx := context.Background()
	first := overdueIncident(models.IncidentStatusAssigned)
	second := overdueIncident(models.IncidentStatusAssigned)

	// Ожидания
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{}, nil).Times(1)
	incidents.EXPECT().ListAckOverdue(ctx, gomock.Any()).
		Return([]*models.Incident{first, second}, nil).Times(1)
	releaser.EXPECT().ReleaseTimedOut(ctx, first.ID).
		Return(errors.New("repository: connection reset")).Times(1)
	releaser.EXPECT().ReleaseTimedOut(ctx, second.ID).Return(nil).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки: проход дошел до конца, починено одно из двух
	require.NoError(t, err)
	assert.Equal(t, 1, report.AckTimeouts)
}

func TestRunSlaChecks_IntakeListFailure(t *testing.T) {
	// Подготовка
	monitor, incidents, _, _ := newTestMonitor(t)
	ctx := context.Background()

	// Ожидания: скан недоступен, проход завершается с ошибкой
	incidents.EXPECT().ListIntakeOverdue(ctx, gomock.Any()).
		Return(nil, errors.New("repository: connection reset")).Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.Error(t, err)
	assert.Equal(t, 0, report.IntakeBreaches)
	assert.Equal(t, 0, report.AckTimeouts)
}

func TestRunSlaChecks_CutoffsRespectConfiguredSLAs(t *testing.T) {
	// Подготовка
	monitor, incidents, _, _ := newTestMonitor(t)
	ctx := context.Background()

	// Ожидания: границы скана отстоят от текущего момента ровно на SLA
	start := time.Now().UTC()
	incidents.EXPECT().
		ListIntakeOverdue(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, before time.Time) ([]*models.Incident, error) {
			assert.WithinDuration(t, start.Add(-10*time.Minute), before, 2*time.Second)
			return nil, nil
		}).
		Times(1)
	incidents.EXPECT().
		ListAckOverdue(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, before time.Time) ([]*models.Incident, error) {
			assert.WithinDuration(t, start.Add(-90*time.Second), before, 2*time.Second)
			return nil, nil
		}).
		Times(1)

	// Действие
	report, err := monitor.RunSlaChecks(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 0, report.IntakeBreaches)
	assert.Equal(t, 0, report.AckTimeouts)
}
