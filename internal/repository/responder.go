package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

const responderColumns = `
			id,
			agency_id,
			name,
			status,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			current_incident_id,
			updated_at`

type ResponderRepository struct {
	db *pgxpool.Pool
}

func NewResponderRepository(db *pgxpool.Pool) service.ResponderRepository {
	return &ResponderRepository{db: db}
}

func scanResponder(row pgx.Row) (*models.Responder, error) {
	responder := &models.Responder{}
	err := row.Scan(
		&responder.ID,
		&responder.AgencyID,
		&responder.Name,
		&responder.Status,
		&responder.Latitude,
		&responder.Longitude,
		&responder.CurrentIncidentID,
		&responder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return responder, nil
}

// GetByID возвращает респондера по его UUID
func (r *ResponderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error) {
	query := `
		SELECT ` + responderColumns + `
		FROM responders
		WHERE id = $1;
	`
	responder, err := scanResponder(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get responder by id: %w", err)
	}
	return responder, nil
}

// GetByIDForUpdate возвращает респондера с блокировкой строки.
// Именно эта блокировка обеспечивает взаимное исключение при гонке назначений.
func (r *ResponderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Responder, error) {
	query := `
		SELECT ` + responderColumns + `
		FROM responders
		WHERE id = $1
		FOR UPDATE;
	`
	responder, err := scanResponder(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("responder with id %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock responder by id: %w", err)
	}
	return responder, nil
}

// ListAvailable возвращает доступных респондеров с известным местоположением
func (r *ResponderRepository) ListAvailable(ctx context.Context) ([]*models.Responder, error) {
	query := `
		SELECT ` + responderColumns + `
		FROM responders
		WHERE
			status = $1
			AND location IS NOT NULL
		ORDER BY id;
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, models.ResponderStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list available responders: %w", err)
	}
	defer rows.Close()

	responders := make([]*models.Responder, 0)
	for rows.Next() {
		responder, err := scanResponder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan responder row: %w", err)
		}
		responders = append(responders, responder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error responders iteration: %w", err)
	}
	return responders, nil
}

// Update сохраняет статус и удерживаемый инцидент респондера
func (r *ResponderRepository) Update(ctx context.Context, responder *models.Responder) error {
	query := `
		UPDATE responders SET
			status = $1,
			current_incident_id = $2,
			updated_at = NOW()
		WHERE id = $3;
	`
	cmdTag, err := conn(ctx, r.db).Exec(ctx, query,
		responder.Status,
		responder.CurrentIncidentID,
		responder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update responder: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("responder with id %s not found for update: %w", responder.ID, errs.ErrNotFound)
	}
	return nil
}
