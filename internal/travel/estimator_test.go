package travel

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGeometricEstimator_Estimate(t *testing.T) {
	estimator := NewGeometricEstimator()
	ctx := context.Background()

	tests := []struct {
		name       string
		originLat  float64
		originLon  float64
		destLat    float64
		destLon    float64
		distanceKm float64
	}{
		{
			name:      "одна и та же точка",
			originLat: 55.7500, originLon: 37.6200,
			destLat: 55.7500, destLon: 37.6200,
			distanceKm: 0,
		},
		{
			// 0.045 градуса широты это примерно 5 км по прямой
			name:      "пять километров на север",
			originLat: 55.7500, originLon: 37.6200,
			destLat: 55.7950, destLon: 37.6200,
			distanceKm: 5.0 * 1.4,
		},
		{
			// Москва - Санкт-Петербург, примерно 634 км по прямой
			name:      "дальняя дистанция",
			originLat: 55.7558, originLon: 37.6173,
			destLat: 59.9343, destLon: 30.3351,
			distanceKm: 634.0 * 1.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate := estimator.Estimate(ctx, tt.originLat, tt.originLon, tt.destLat, tt.destLon)

			assert.InDelta(t, tt.distanceKm, estimate.DistanceKm, tt.distanceKm*0.01+0.001)
			// Длительность согласована с дистанцией через среднюю скорость
			assert.InDelta(t, estimate.DistanceKm/25.0*60, estimate.DurationMin, 0.0001)
		})
	}
}

func TestGeometricEstimator_SymmetricDistance(t *testing.T) {
	estimator := NewGeometricEstimator()
	ctx := context.Background()

	forward := estimator.Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6500)
	backward := estimator.Estimate(ctx, 55.7950, 37.6500, 55.7500, 37.6200)

	assert.InDelta(t, forward.DistanceKm, backward.DistanceKm, 0.0001)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func TestOSRMEstimator_Estimate(t *testing.T) {
	// Подготовка: фейковый OSRM отвечает маршрутом 1500 м / 240 с
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":1500.0,"duration":240.0}]}`))
	}))
	defer server.Close()

	estimator := NewOSRMEstimator(server.URL, time.Second, newTestLogger())

	// Действие
	estimate := estimator.Estimate(context.Background(), 55.7500, 37.6200, 55.7600, 37.6300)

	// Проверки
	assert.InDelta(t, 1.5, estimate.DistanceKm, 0.0001)
	assert.InDelta(t, 4.0, estimate.DurationMin, 0.0001)
}

func TestOSRMEstimator_FallsBackOnServerError(t *testing.T) {
	// Подготовка: OSRM отвечает 500
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	estimator := NewOSRMEstimator(server.URL, time.Second, newTestLogger())
	fallback := NewGeometricEstimator()
	ctx := context.Background()

	// Действие
	estimate := estimator.Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)

	// Проверки: результат совпадает с геометрической оценкой
	expected := fallback.Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)
	assert.InDelta(t, expected.DistanceKm, estimate.DistanceKm, 0.0001)
	assert.InDelta(t, expected.DurationMin, estimate.DurationMin, 0.0001)
}

func TestOSRMEstimator_FallsBackOnNoRoute(t *testing.T) {
	// Подготовка: OSRM не нашел маршрут
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer server.Close()

	estimator := NewOSRMEstimator(server.URL, time.Second, newTestLogger())
	ctx := context.Background()

	// Действие
	estimate := estimator.Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)

	// Проверки
	expected := NewGeometricEstimator().Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)
	assert.InDelta(t, expected.DistanceKm, estimate.DistanceKm, 0.0001)
}

func TestOSRMEstimator_FallsBackOnUnreachableHost(t *testing.T) {
	// Подготовка: сервер недоступен
	estimator := NewOSRMEstimator("http://127.0.0.1:1", 100*time.Millisecond, newTestLogger())
	ctx := context.Background()

	// Действие
	estimate := estimator.Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)

	// Проверки
	expected := NewGeometricEstimator().Estimate(ctx, 55.7500, 37.6200, 55.7950, 37.6200)
	assert.InDelta(t, expected.DistanceKm, estimate.DistanceKm, 0.0001)
}
