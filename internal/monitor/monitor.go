package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// IncidentSource - чтение инцидентов, нарушивших SLA
type IncidentSource interface {
	ListIntakeOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error)
	ListAckOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error)
}

// ActivityLog - журнал активности для идемпотентной пометки нарушений
type ActivityLog interface {
	Append(ctx context.Context, record *models.ActivityRecord) error
	Exists(ctx context.Context, incidentID uuid.UUID, action string) (bool, error)
}

// Releaser - примитив ремонта просроченного назначения, тот же путь,
// что и у ручного decline. Монитор получает его через конструктор,
// а не через глобальный синглтон, чтобы не зависеть от порядка инициализации.
type Releaser interface {
	ReleaseTimedOut(ctx context.Context, incidentID uuid.UUID) error
}

// Report - итог одного прохода проверок SLA
type Report struct {
	IntakeBreaches int `json:"intake_breaches"`
	AckTimeouts    int `json:"ack_timeouts"`
}

// Monitor - фоновый процесс, который по фиксированному расписанию находит
// инциденты с истекшими сроками и чинит их
type Monitor struct {
	incidents IncidentSource
	activity  ActivityLog
	releaser  Releaser
	logger    *logrus.Logger
	cfg       *config.Config
}

func New(incidents IncidentSource, activity ActivityLog, releaser Releaser, logger *logrus.Logger, cfg *config.Config) *Monitor {
	return &Monitor{
		incidents: incidents,
		activity:  activity,
		releaser:  releaser,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start запускает горутину с периодическими проверками SLA
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Infof("Starting SLA monitor with interval %v...", m.cfg.SLACheckInterval)
	go func() {
		ticker := time.NewTicker(m.cfg.SLACheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("Stopping SLA monitor.")
				return
			case <-ticker.C:
				if _, err := m.RunSlaChecks(ctx); err != nil {
					// Полный сбой прохода не фатален: следующий тик повторит
					m.logger.WithError(err).Error("SLA check pass failed")
				}
			}
		}
	}()
}

// RunSlaChecks выполняет один проход обеих проверок SLA.
// Вызывается как планировщиком, так и синхронно операционным инструментарием.
func (m *Monitor) RunSlaChecks(ctx context.Context) (*Report, error) {
	report := &Report{}

	if err := m.checkIntakeSLA(ctx, report); err != nil {
		return report, err
	}
	if err := m.checkAckSLA(ctx, report); err != nil {
		return report, err
	}

	if report.IntakeBreaches > 0 || report.AckTimeouts > 0 {
		m.logger.WithFields(logrus.Fields{
			"intake_breaches": report.IntakeBreaches,
			"ack_timeouts":    report.AckTimeouts,
		}).Info("SLA check pass completed with findings")
	}
	return report, nil
}

// checkIntakeSLA помечает инциденты, застрявшие на первичном разборе.
// Пометка идемпотентна: повторный проход не создает дубликатов.
// Проверка не меняет состояние инцидента, только сигнализирует эскалацию.
func (m *Monitor) checkIntakeSLA(ctx context.Context, report *Report) error {
	before := time.Now().UTC().Add(-m.cfg.IntakeSLA)
	overdue, err := m.incidents.ListIntakeOverdue(ctx, before)
	if err != nil {
		return fmt.Errorf("monitor: could not list intake overdue incidents: %w", err)
	}

	for _, incident := range overdue {
		log := m.logger.WithField("incident_id", incident.ID)

		exists, err := m.activity.Exists(ctx, incident.ID, models.ActionIntakeBreach)
		if err != nil {
			log.WithError(err).Error("Failed to check intake breach record, skipping incident")
			continue
		}
		if exists {
			continue
		}

		if err := m.activity.Append(ctx, &models.ActivityRecord{
			IncidentID: incident.ID,
			ActorID:    models.SystemActorSLAMonitor,
			Action:     models.ActionIntakeBreach,
			Note:       "SLA Breach — escalate",
		}); err != nil {
			log.WithError(err).Error("Failed to flag intake SLA breach, skipping incident")
			continue
		}
		report.IntakeBreaches++
		log.Warn("Intake SLA breached, incident flagged for escalation")
	}
	return nil
}

// checkAckSLA чинит назначения без подтверждения: инцидент возвращается
// в очередь, респондер освобождается. Сбой ремонта одного инцидента
// не прерывает обработку остальных.
func (m *Monitor) checkAckSLA(ctx context.Context, report *Report) error {
	before := time.Now().UTC().Add(-m.cfg.AckSLA)
	overdue, err := m.incidents.ListAckOverdue(ctx, before)
	if err != nil {
		return fmt.Errorf("monitor: could not list ack overdue incidents: %w", err)
	}

	for _, incident := range overdue {
		log := m.logger.WithField("incident_id", incident.ID)

		if err := m.releaser.ReleaseTimedOut(ctx, incident.ID); err != nil {
			log.WithError(err).Error("Failed to repair timed out assignment, skipping incident")
			continue
		}
		report.AckTimeouts++
		log.Warn("Acknowledgment SLA breached, assignment re-queued")
	}
	return nil
}
