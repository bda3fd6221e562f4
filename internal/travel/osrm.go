package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// OSRMEstimator - сетевая оценка пути через OSRM route API.
// Вызов ограничен таймаутом; при любом сбое или таймауте возвращается
// геометрическая оценка, поэтому вызывающий никогда не блокируется надолго.
type OSRMEstimator struct {
	baseURL    string
	httpClient *http.Client
	fallback   *GeometricEstimator
	logger     *logrus.Logger
}

func NewOSRMEstimator(baseURL string, timeout time.Duration, logger *logrus.Logger) *OSRMEstimator {
	return &OSRMEstimator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fallback: NewGeometricEstimator(),
		logger:   logger,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // метры
		Duration float64 `json:"duration"` // секунды
	} `json:"routes"`
}

func (e *OSRMEstimator) Estimate(ctx context.Context, originLat, originLon, destLat, destLon float64) Estimate {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		e.baseURL, originLon, originLat, destLon, destLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to create OSRM request, falling back to geometric estimate")
		return e.fallback.Estimate(ctx, originLat, originLon, destLat, destLon)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.WithError(err).Warn("OSRM request failed, falling back to geometric estimate")
		return e.fallback.Estimate(ctx, originLat, originLon, destLat, destLon)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warnf("OSRM returned status %d, falling back to geometric estimate", resp.StatusCode)
		return e.fallback.Estimate(ctx, originLat, originLon, destLat, destLon)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		e.logger.WithError(err).Warn("Failed to decode OSRM response, falling back to geometric estimate")
		return e.fallback.Estimate(ctx, originLat, originLon, destLat, destLon)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		e.logger.Warnf("OSRM returned no route (code=%s), falling back to geometric estimate", body.Code)
		return e.fallback.Estimate(ctx, originLat, originLon, destLat, destLon)
	}

	return Estimate{
		DistanceKm:  body.Routes[0].Distance / 1000,
		DurationMin: body.Routes[0].Duration / 60,
	}
}
