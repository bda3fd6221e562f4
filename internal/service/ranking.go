package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// Веса итоговой оценки кандидата с респондером
	weightJurisdiction = 0.35
	weightSeverity     = 0.30
	weightProximity    = 0.25

	// Веса кандидата без доступных респондеров (только агентство)
	weightAgencyOnlyJurisdiction = 0.5
	weightAgencyOnlySeverity     = 0.4

	// Горизонт близости: дальше этого расстояния близость не дает вклада
	proximityHorizonKm = 15.0

	// Штраф за долгую дорогу
	durationPenaltyThresholdMin = 30.0
	durationPenalty             = 0.2

	// Серьезность по умолчанию для неклассифицированных инцидентов
	defaultSeverity = 3
	maxSeverity     = 5
)

// affinityRule - набор ключевых слов категории и бонус за совпадение
type affinityRule struct {
	keywords []string
	bonus    float64
}

// categoryAffinity - статическая таблица соответствия категории инцидента
// типу агентства. Правила проверяются по порядку, первое совпадение выигрывает,
// поэтому более высокие бонусы стоят раньше.
var categoryAffinity = map[string][]affinityRule{
	models.AgencyTypeFire: {
		{keywords: []string{"fire", "smoke", "explosion", "burning"}, bonus: 0.2},
		{keywords: []string{"rescue", "collapse"}, bonus: 0.15},
	},
	models.AgencyTypeMedical: {
		{keywords: []string{"medical", "injury", "cardiac", "ambulance", "health"}, bonus: 0.2},
		{keywords: []string{"accident", "crash", "fire"}, bonus: 0.15},
	},
	models.AgencyTypePolice: {
		{keywords: []string{"crime", "theft", "assault", "violence", "robbery"}, bonus: 0.2},
		{keywords: []string{"accident", "crash", "disturbance"}, bonus: 0.15},
	},
	models.AgencyTypeUtility: {
		{keywords: []string{"infrastructure", "construction", "utility", "water", "power", "gas", "road"}, bonus: 0.3},
	},
}

// affinityBonus возвращает бонус соответствия категории инцидента типу агентства
func affinityBonus(agencyType string, category *string) float64 {
	if category == nil {
		return 0
	}
	normalized := strings.ToLower(*category)
	for _, rule := range categoryAffinity[agencyType] {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.bonus
			}
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RankCandidates перечисляет подходящие пары (агентство, респондер) для инцидента
// и возвращает их по убыванию итоговой оценки. Операция только читает состояние,
// поэтому результат является рекомендацией и перепроверяется при фиксации назначения.
func (s *dispatchService) RankCandidates(ctx context.Context, incidentID uuid.UUID) ([]*models.DispatchCandidate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "RankCandidates",
		"incident_id": incidentID,
	})

	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident for ranking")
		return nil, fmt.Errorf("service: could not rank candidates: %w", err)
	}

	severity := defaultSeverity
	if incident.Severity != nil {
		severity = *incident.Severity
	}
	severityNorm := clamp(float64(severity)/maxSeverity, 0, 1)
	hasLocation := incident.Latitude != nil && incident.Longitude != nil

	agencies, err := s.agencies.ListActive(ctx, incident.Latitude, incident.Longitude)
	if err != nil {
		log.WithError(err).Error("Failed to list active agencies")
		return nil, fmt.Errorf("service: could not rank candidates: %w", err)
	}

	responders, err := s.responders.ListAvailable(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list available responders")
		return nil, fmt.Errorf("service: could not rank candidates: %w", err)
	}

	// Разбиваем респондеров по агентствам, исключая ранее отклонивших
	byAgency := make(map[uuid.UUID][]*models.Responder)
	for _, responder := range responders {
		if incident.HasDeclined(responder.ID) {
			continue
		}
		byAgency[responder.AgencyID] = append(byAgency[responder.AgencyID], responder)
	}

	candidates := make([]*models.DispatchCandidate, 0)
	for _, agency := range agencies {
		jurisdictionScore := jurisdictionScoreFor(agency, len(agencies))
		categoryBonus := affinityBonus(agency.Type, incident.Category)

		agencyResponders := byAgency[agency.ID]
		if len(agencyResponders) == 0 {
			// Агентство без доступных респондеров остается кандидатом без юнита
			candidates = append(candidates, &models.DispatchCandidate{
				AgencyID:          agency.ID,
				AgencyName:        agency.Name,
				AgencyType:        agency.Type,
				JurisdictionScore: jurisdictionScore,
				SeverityScore:     severityNorm,
				CategoryBonus:     categoryBonus,
				TotalScore: jurisdictionScore*weightAgencyOnlyJurisdiction +
					severityNorm*weightAgencyOnlySeverity +
					categoryBonus,
			})
			continue
		}

		for _, responder := range agencyResponders {
			candidate := &models.DispatchCandidate{
				AgencyID:          agency.ID,
				AgencyName:        agency.Name,
				AgencyType:        agency.Type,
				ResponderID:       &responder.ID,
				JurisdictionScore: jurisdictionScore,
				SeverityScore:     severityNorm,
				CategoryBonus:     categoryBonus,
			}

			penalty := 0.0
			if hasLocation {
				estimate := s.estimator.Estimate(ctx,
					*responder.Latitude, *responder.Longitude,
					*incident.Latitude, *incident.Longitude)
				candidate.DistanceKm = estimate.DistanceKm
				candidate.DurationMin = estimate.DurationMin
				candidate.ProximityScore = 1 - clamp(estimate.DistanceKm/proximityHorizonKm, 0, 1)
				if estimate.DurationMin > durationPenaltyThresholdMin {
					penalty = durationPenalty
				}
			}

			candidate.TotalScore = jurisdictionScore*weightJurisdiction +
				severityNorm*weightSeverity +
				candidate.ProximityScore*weightProximity +
				categoryBonus -
				penalty
			candidates = append(candidates, candidate)
		}
	}

	// Сортировка: оценка по убыванию, расстояние по возрастанию,
	// затем id агентства - для полной детерминированности
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TotalScore != candidates[j].TotalScore {
			return candidates[i].TotalScore > candidates[j].TotalScore
		}
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].AgencyID.String() < candidates[j].AgencyID.String()
	})

	log.WithField("candidates", len(candidates)).Info("Candidates ranked")
	return candidates, nil
}

// jurisdictionScoreFor - 1.0 при попадании точки в полигон юрисдикции,
// либо когда полигон не задан и агентство - единственный кандидат;
// иначе 0.5. Агентства вне юрисдикции не исключаются, а штрафуются.
func jurisdictionScoreFor(agency *models.Agency, totalAgencies int) float64 {
	if agency.InJurisdiction {
		return 1.0
	}
	if !agency.HasJurisdiction && totalAgencies == 1 {
		return 1.0
	}
	return 0.5
}
