package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	dispatchQueueKey = "dispatch_events"
)

// Аудитории уведомлений
const (
	AudienceAdmins = "admins"
)

// AudienceAgency формирует адресата уведомления в рамках одного агентства
func AudienceAgency(agencyID uuid.UUID) string {
	return fmt.Sprintf("agency:%s", agencyID.String())
}

// DispatchEvent - событие "инцидент обновлен" для внешних потребителей
type DispatchEvent struct {
	IncidentID uuid.UUID  `json:"incident_id"`
	Status     string     `json:"status"`
	AgencyID   *uuid.UUID `json:"agency_id,omitempty"`
	Audience   []string   `json:"audience"`
	ActorID    string     `json:"actor_id"`
	Note       string     `json:"note,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Publisher - интерфейс для публикации событий диспетчеризации
type Publisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}

// RedisPublisher - реализация Publisher, использующая Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, dispatchQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dispatch event to Redis: %w", err)
	}
	return nil
}
