package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

const incidentCacheTTL = 5 * time.Minute

const incidentColumns = `
			id,
			title,
			description,
			status,
			severity,
			category,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			assigned_agency_id,
			assigned_responder_id,
			dispatched_at,
			acknowledged_at,
			declined_responder_ids,
			created_at,
			updated_at`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Status,
		&incident.Severity,
		&incident.Category,
		&incident.Latitude,
		&incident.Longitude,
		&incident.AssignedAgencyID,
		&incident.AssignedResponderID,
		&incident.DispatchedAt,
		&incident.AcknowledgedAt,
		&incident.DeclinedResponderIDs,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE id = $1;
	`
	incident, err := scanIncident(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// GetByIDForUpdate возвращает инцидент с блокировкой строки.
// Должен вызываться только внутри транзакции.
func (r *IncidentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE id = $1
		FOR UPDATE;
	`
	incident, err := scanIncident(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock incident by id: %w", err)
	}
	return incident, nil
}

// Update сохраняет диспетчерские поля инцидента
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			status = $1,
			assigned_agency_id = $2,
			assigned_responder_id = $3,
			dispatched_at = $4,
			acknowledged_at = $5,
			declined_responder_ids = $6,
			updated_at = NOW()
		WHERE id = $7;
	`
	cmdTag, err := conn(ctx, r.db).Exec(ctx, query,
		incident.Status,
		incident.AssignedAgencyID,
		incident.AssignedResponderID,
		incident.DispatchedAt,
		incident.AcknowledgedAt,
		incident.DeclinedResponderIDs,
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, errs.ErrNotFound)
	}
	return nil
}

// ListIntakeOverdue возвращает инциденты, не прошедшие первичный разбор до before
func (r *IncidentRepository) ListIntakeOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE
			status IN ($1, $2)
			AND created_at < $3
		ORDER BY created_at;
	`
	return r.queryIncidents(ctx, query, models.IncidentStatusReceived, models.IncidentStatusUnderReview, before)
}

// ListAckOverdue возвращает назначенные инциденты без подтверждения, отправленные до before
func (r *IncidentRepository) ListAckOverdue(ctx context.Context, before time.Time) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE
			status = $1
			AND acknowledged_at IS NULL
			AND dispatched_at < $2
		ORDER BY dispatched_at;
	`
	return r.queryIncidents(ctx, query, models.IncidentStatusAssigned, before)
}

func (r *IncidentRepository) queryIncidents(ctx context.Context, query string, args ...any) ([]*models.Incident, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error incidents iteration: %w", err)
	}
	return incidents, nil
}

// GetFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.ID.String())
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, incidentCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("incident:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
