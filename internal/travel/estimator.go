package travel

import (
	"context"
	"math"
)

const (
	earthRadiusKm = 6371.0
	// Коэффициент извилистости дорожной сети относительно прямой
	roadTortuosityFactor = 1.4
	// Средняя городская скорость, км/ч
	urbanAverageSpeedKmh = 25.0
)

// Estimate - оценка дорожного расстояния и времени в пути
type Estimate struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// Estimator оценивает путь между двумя координатами.
// Реализации никогда не возвращают ошибку: при любом внутреннем сбое
// возвращается нулевая оценка, чтобы ранжирование деградировало, а не падало.
type Estimator interface {
	Estimate(ctx context.Context, originLat, originLon, destLat, destLon float64) Estimate
}

// GeometricEstimator - детерминированная геометрическая оценка:
// расстояние по дуге большого круга с поправкой на извилистость дорог,
// длительность - по средней городской скорости.
type GeometricEstimator struct{}

func NewGeometricEstimator() *GeometricEstimator {
	return &GeometricEstimator{}
}

func (e *GeometricEstimator) Estimate(_ context.Context, originLat, originLon, destLat, destLon float64) Estimate {
	distanceKm := haversineKm(originLat, originLon, destLat, destLon) * roadTortuosityFactor
	durationMin := distanceKm / urbanAverageSpeedKmh * 60
	return Estimate{
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
	}
}

// haversineKm возвращает расстояние по дуге большого круга в километрах
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
