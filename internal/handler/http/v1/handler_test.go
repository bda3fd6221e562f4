package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/errs"
	handler_mocks "github.com/shenikar/emergency_dispatch_system/internal/handler/http/v1/mocks"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/monitor"
	service_mocks "github.com/shenikar/emergency_dispatch_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "test-api-key"

// newTestRouter — вспомогательная функция для создания роутера с моками
func newTestRouter(t *testing.T) (*gin.Engine, *service_mocks.MockDispatchService, *handler_mocks.MockSlaRunner) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	mockService := service_mocks.NewMockDispatchService(ctrl)
	mockSla := handler_mocks.NewMockSlaRunner(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{APIKeys: []string{testAPIKey}}
	h := NewHandler(mockService, mockSla, logger, cfg)

	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router, mockService, mockSla
}

// makeRequest выполняет HTTP-запрос к тестовому роутеру с API-ключом
func makeRequest(router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func assignedIncident(incidentID, agencyID, responderID uuid.UUID) *models.Incident {
	now := time.Now().UTC()
	return &models.Incident{
		ID:                  incidentID,
		Title:               "Пожар в жилом доме",
		Status:              models.IncidentStatusAssigned,
		AssignedAgencyID:    &agencyID,
		AssignedResponderID: &responderID,
		DispatchedAt:        &now,
	}
}

func TestGetIncident(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	incident := &models.Incident{
		ID:     incidentID,
		Title:  "Прорыв водопровода",
		Status: models.IncidentStatusReceived,
	}

	// Ожидания
	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(incident, nil).Times(1)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, models.IncidentStatusReceived, resp.Status)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()

	// Ожидания
	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("service: could not get incident: %w", errs.ErrNotFound)).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)

	// Проверки
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIncident_InvalidID(t *testing.T) {
	// Подготовка
	router, _, _ := newTestRouter(t)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/not-a-uuid", nil)

	// Проверки: до сервиса дело не доходит
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankCandidates(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	responderID := uuid.New()
	candidates := []*models.DispatchCandidate{
		{
			AgencyID:          uuid.New(),
			AgencyName:        "Пожарная часть 1",
			AgencyType:        models.AgencyTypeFire,
			ResponderID:       &responderID,
			JurisdictionScore: 1.0,
			SeverityScore:     1.0,
			ProximityScore:    0.99,
			CategoryBonus:     0.2,
			DistanceKm:        0.1,
			DurationMin:       0.24,
			TotalScore:        1.0975,
		},
	}

	// Ожидания
	mockService.EXPECT().RankCandidates(gomock.Any(), incidentID).Return(candidates, nil).Times(1)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String()+"/candidates", nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp []CandidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, models.AgencyTypeFire, resp[0].AgencyType)
	assert.InDelta(t, 1.0975, resp[0].TotalScore, 0.0001)
}

func TestAssignIncident(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	agencyID := uuid.New()
	responderID := uuid.New()

	input := AssignRequest{
		AgencyID:    agencyID,
		ResponderID: &responderID,
		ActorID:     "dispatcher-1",
	}

	// Ожидания
	mockService.EXPECT().
		Assign(gomock.Any(), incidentID, agencyID, gomock.Any(), "dispatcher-1").
		Return(assignedIncident(incidentID, agencyID, responderID), nil).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/assign", input)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.IncidentStatusAssigned, resp.Status)
	require.NotNil(t, resp.AssignedResponderID)
	assert.Equal(t, responderID, *resp.AssignedResponderID)
}

func TestAssignIncident_Conflict(t *testing.T) {
	// Подготовка: респондер уже занят
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	input := AssignRequest{
		AgencyID: uuid.New(),
		ActorID:  "dispatcher-1",
	}

	// Ожидания
	mockService.EXPECT().
		Assign(gomock.Any(), incidentID, input.AgencyID, gomock.Any(), "dispatcher-1").
		Return(nil, fmt.Errorf("service: could not assign incident: %w", errs.ErrConflict)).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/assign", input)

	// Проверки
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignIncident_ValidationError(t *testing.T) {
	// Подготовка: не указан actor_id
	router, _, _ := newTestRouter(t)
	incidentID := uuid.New()
	input := AssignRequest{AgencyID: uuid.New()}

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/assign", input)

	// Проверки
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcknowledgeIncident(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	agencyID := uuid.New()
	responderID := uuid.New()
	input := AcknowledgeRequest{
		ResponderID: responderID,
		ActorID:     responderID.String(),
	}

	incident := assignedIncident(incidentID, agencyID, responderID)
	acked := time.Now().UTC()
	incident.AcknowledgedAt = &acked

	// Ожидания
	mockService.EXPECT().
		Acknowledge(gomock.Any(), incidentID, responderID, responderID.String()).
		Return(incident, nil).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/acknowledge", input)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.AcknowledgedAt)
}

func TestAcknowledgeIncident_Forbidden(t *testing.T) {
	// Подготовка: подтверждает чужой респондер
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	responderID := uuid.New()
	input := AcknowledgeRequest{
		ResponderID: responderID,
		ActorID:     responderID.String(),
	}

	// Ожидания
	mockService.EXPECT().
		Acknowledge(gomock.Any(), incidentID, responderID, responderID.String()).
		Return(nil, fmt.Errorf("service: could not acknowledge assignment: %w", errs.ErrForbidden)).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/acknowledge", input)

	// Проверки
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeclineIncident(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	responderID := uuid.New()
	input := DeclineRequest{
		ResponderID: responderID,
		Reason:      "unit low on fuel",
		ActorID:     responderID.String(),
	}

	requeued := &models.Incident{
		ID:                   incidentID,
		Status:               models.IncidentStatusReceived,
		DeclinedResponderIDs: []uuid.UUID{responderID},
	}

	// Ожидания
	mockService.EXPECT().
		Decline(gomock.Any(), incidentID, responderID, "unit low on fuel", responderID.String()).
		Return(requeued, nil).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/decline", input)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.IncidentStatusReceived, resp.Status)
	assert.Contains(t, resp.DeclinedResponderIDs, responderID)
}

func TestDeclineIncident_ReasonRequired(t *testing.T) {
	// Подготовка: отказ без причины
	router, _, _ := newTestRouter(t)
	incidentID := uuid.New()
	input := DeclineRequest{
		ResponderID: uuid.New(),
		ActorID:     "responder-1",
	}

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/decline", input)

	// Проверки
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoAssignIncident(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()

	// Ожидания
	mockService.EXPECT().TryAutoAssign(gomock.Any(), incidentID).Return(true, nil).Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/auto-assign", nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp AutoAssignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Triggered)
}

func TestAutoAssignIncident_NotTriggered(t *testing.T) {
	// Подготовка: пороги не пройдены, это не ошибка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()

	// Ожидания
	mockService.EXPECT().TryAutoAssign(gomock.Any(), incidentID).Return(false, nil).Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/"+incidentID.String()+"/auto-assign", nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp AutoAssignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Triggered)
}

func TestListActivity(t *testing.T) {
	// Подготовка
	router, mockService, _ := newTestRouter(t)
	incidentID := uuid.New()
	records := []*models.ActivityRecord{
		{
			ID:         2,
			IncidentID: incidentID,
			ActorID:    models.SystemActorAutoPilot,
			Action:     models.ActionAutoAssigned,
			CreatedAt:  time.Now().UTC(),
		},
		{
			ID:         1,
			IncidentID: incidentID,
			ActorID:    "dispatcher-1",
			Action:     models.ActionAssigned,
			CreatedAt:  time.Now().UTC().Add(-time.Minute),
		},
	}

	// Ожидания
	mockService.EXPECT().ListActivity(gomock.Any(), incidentID).Return(records, nil).Times(1)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String()+"/activity", nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp []ActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, models.ActionAutoAssigned, resp[0].Action)
}

func TestRunSlaChecks(t *testing.T) {
	// Подготовка
	router, _, mockSla := newTestRouter(t)

	// Ожидания
	mockSla.EXPECT().RunSlaChecks(gomock.Any()).
		Return(&monitor.Report{IntakeBreaches: 2, AckTimeouts: 1}, nil).
		Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/sla/run", nil)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp SlaReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.IntakeBreaches)
	assert.Equal(t, 1, resp.AckTimeouts)
}

func TestMissingAPIKey(t *testing.T) {
	// Подготовка
	router, _, _ := newTestRouter(t)
	incidentID := uuid.New()

	// Действие: запрос без ключа
	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Проверки
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidAPIKey(t *testing.T) {
	// Подготовка
	router, _, _ := newTestRouter(t)
	incidentID := uuid.New()

	// Действие
	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Проверки
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerTokenAccepted(t *testing.T) {
	// Подготовка
	router, _, mockSla := newTestRouter(t)

	// Ожидания
	mockSla.EXPECT().RunSlaChecks(gomock.Any()).Return(&monitor.Report{}, nil).Times(1)

	// Действие: ключ в заголовке Authorization вместо X-API-Key
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sla/run", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck(t *testing.T) {
	// Подготовка
	router, _, _ := newTestRouter(t)

	// Действие: health открыт без аутентификации
	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
}
