package v1

import "github.com/shenikar/emergency_dispatch_system/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                   model.ID,
		Title:                model.Title,
		Description:          model.Description,
		Status:               model.Status,
		Severity:             model.Severity,
		Category:             model.Category,
		Latitude:             model.Latitude,
		Longitude:            model.Longitude,
		AssignedAgencyID:     model.AssignedAgencyID,
		AssignedResponderID:  model.AssignedResponderID,
		DispatchedAt:         model.DispatchedAt,
		AcknowledgedAt:       model.AcknowledgedAt,
		DeclinedResponderIDs: model.DeclinedResponderIDs,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

// ModelToCandidateResponse преобразует оценку кандидата в DTO для ответа
func ModelToCandidateResponse(model *models.DispatchCandidate) *CandidateResponse {
	return &CandidateResponse{
		AgencyID:          model.AgencyID,
		AgencyName:        model.AgencyName,
		AgencyType:        model.AgencyType,
		ResponderID:       model.ResponderID,
		JurisdictionScore: model.JurisdictionScore,
		SeverityScore:     model.SeverityScore,
		ProximityScore:    model.ProximityScore,
		CategoryBonus:     model.CategoryBonus,
		DistanceKm:        model.DistanceKm,
		DurationMin:       model.DurationMin,
		TotalScore:        model.TotalScore,
	}
}

// ModelsToCandidateResponses преобразует слайс кандидатов в слайс DTO
func ModelsToCandidateResponses(models []*models.DispatchCandidate) []*CandidateResponse {
	responses := make([]*CandidateResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToCandidateResponse(model)
	}
	return responses
}

// ModelsToActivityResponses преобразует слайс записей журнала в слайс DTO
func ModelsToActivityResponses(records []*models.ActivityRecord) []*ActivityResponse {
	responses := make([]*ActivityResponse, len(records))
	for i, record := range records {
		responses[i] = &ActivityResponse{
			ID:         record.ID,
			IncidentID: record.IncidentID,
			ActorID:    record.ActorID,
			Action:     record.Action,
			Note:       record.Note,
			CreatedAt:  record.CreatedAt,
		}
	}
	return responses
}
