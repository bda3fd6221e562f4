package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type AgencyRepository struct {
	db *pgxpool.Pool
}

func NewAgencyRepository(db *pgxpool.Pool) service.AgencyRepository {
	return &AgencyRepository{db: db}
}

// ListActive возвращает активные агентства. Если переданы координаты инцидента,
// попадание точки в полигон юрисдикции вычисляется прямо в запросе.
func (r *AgencyRepository) ListActive(ctx context.Context, lat, lon *float64) ([]*models.Agency, error) {
	query := `
		SELECT
			id,
			name,
			type,
			active,
			jurisdiction IS NOT NULL as has_jurisdiction,
			CASE
				WHEN jurisdiction IS NOT NULL AND $1::float8 IS NOT NULL AND $2::float8 IS NOT NULL
				THEN ST_Covers(jurisdiction, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography)
				ELSE false
			END as in_jurisdiction
		FROM agencies
		WHERE active = true
		ORDER BY id;
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to list active agencies: %w", err)
	}
	defer rows.Close()

	agencies := make([]*models.Agency, 0)
	for rows.Next() {
		agency := &models.Agency{}
		err := rows.Scan(
			&agency.ID,
			&agency.Name,
			&agency.Type,
			&agency.Active,
			&agency.HasJurisdiction,
			&agency.InJurisdiction,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency row: %w", err)
		}
		agencies = append(agencies, agency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error agencies iteration: %w", err)
	}
	return agencies, nil
}
