package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) service.ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append добавляет запись в журнал активности (только добавление)
func (r *ActivityRepository) Append(ctx context.Context, record *models.ActivityRecord) error {
	query := `
		INSERT INTO activity_log (incident_id, actor_id, action, note)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at;
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		record.IncidentID,
		record.ActorID,
		record.Action,
		record.Note,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append activity record: %w", err)
	}
	return nil
}

// Exists проверяет наличие записи с данным действием для инцидента
func (r *ActivityRepository) Exists(ctx context.Context, incidentID uuid.UUID, action string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM activity_log
			WHERE incident_id = $1 AND action = $2
		);
	`
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, query, incidentID, action).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check activity record existence: %w", err)
	}
	return exists, nil
}

// ListByIncident возвращает журнал активности инцидента, новые записи первыми
func (r *ActivityRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.ActivityRecord, error) {
	query := `
		SELECT id, incident_id, actor_id, action, note, created_at
		FROM activity_log
		WHERE incident_id = $1
		ORDER BY created_at DESC, id DESC;
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.ActivityRecord, 0)
	for rows.Next() {
		record := &models.ActivityRecord{}
		err := rows.Scan(
			&record.ID,
			&record.IncidentID,
			&record.ActorID,
			&record.Action,
			&record.Note,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error activity iteration: %w", err)
	}
	return records, nil
}
