// Package realtime publica eventos de dominio por Redis Pub/Sub para que los
// frontends de cada tenant refresquen pantallas sin polling.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

var (
	_ sales.EventPublisher = (*RedisPublisher)(nil)
	_ stock.EventPublisher = (*RedisPublisher)(nil)
)

// envelope formato de cada mensaje publicado en el canal del tenant.
type envelope struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	EmittedAt time.Time `json:"emitted_at"`
}

// RedisPublisher emite eventos en farmasnt:tenant:{id}:events. Los fallos se
// registran y se descartan: la transacción ya confirmó cuando se publica.
type RedisPublisher struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewRedisPublisher construye el publicador sobre un cliente ya conectado.
func NewRedisPublisher(rdb *redis.Client, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, log: log}
}

// Publish serializa y publica el evento en el canal del tenant.
func (p *RedisPublisher) Publish(ctx context.Context, tenantID, event string, payload any) {
	msg, err := json.Marshal(envelope{Event: event, Data: payload, EmittedAt: time.Now().UTC()})
	if err != nil {
		p.log.Warn().Err(err).Str("event", event).Msg("no se pudo serializar el evento realtime")
		return
	}
	channel := fmt.Sprintf("farmasnt:tenant:%s:events", tenantID)
	if err := p.rdb.Publish(ctx, channel, msg).Err(); err != nil {
		p.log.Warn().Err(err).Str("channel", channel).Str("event", event).Msg("no se pudo publicar el evento realtime")
	}
}

// NopPublisher descarta todos los eventos. Se usa cuando Redis no está
// configurado (despliegues sin frontend realtime).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, string, string, any) {}

var (
	_ sales.EventPublisher = NopPublisher{}
	_ stock.EventPublisher = NopPublisher{}
)

// NewClient conecta a Redis y valida conectividad al arranque.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
