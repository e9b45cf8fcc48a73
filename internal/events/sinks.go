package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// LogSink writes every event at debug level, and integrity signals at warn.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Notify(e Event) {
	ev := s.Logger.Debug()
	if e.Name == DataIntegrity {
		ev = s.Logger.Warn()
	}
	ev.Str("event", string(e.Name)).
		Str("chapter", e.ChapterID).
		Str("attr", e.Attr).
		Str("enemy", e.EnemyID).
		Str("skill", e.SkillID).
		Int("amount", e.Amount).
		Str("detail", e.Detail).
		Msg("engine event")
}

// MetricsSink counts events per name.
type MetricsSink struct {
	events  *prometheus.CounterVec
	battles *prometheus.CounterVec
}

// NewMetricsSink registers its collectors with reg.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	f := promauto.With(reg)
	return &MetricsSink{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xianxia_engine_events_total",
			Help: "Engine events emitted, partitioned by event name.",
		}, []string{"event"}),
		battles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "xianxia_battles_finished_total",
			Help: "Finished encounters, partitioned by enemy and outcome.",
		}, []string{"enemy", "outcome"}),
	}
}

func (s *MetricsSink) Notify(e Event) {
	s.events.WithLabelValues(string(e.Name)).Inc()
	switch e.Name {
	case CombatVictory:
		s.battles.WithLabelValues(e.EnemyID, "victory").Inc()
	case CombatDefeat:
		s.battles.WithLabelValues(e.EnemyID, "defeat").Inc()
	}
}

// Publisher is the subset of *amqp.Channel the AMQP sink uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events as JSON to a topic exchange, routed by event
// name. Publish failures are logged and dropped.
type AMQPSink struct {
	ch       Publisher
	exchange string
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewAMQPSink opens a channel on conn and declares the exchange.
func NewAMQPSink(conn *amqp.Connection, exchange string, logger zerolog.Logger) (*AMQPSink, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("events: declare exchange %q: %w", exchange, err)
	}
	return newAMQPSink(ch, exchange, logger), nil
}

func newAMQPSink(ch Publisher, exchange string, logger zerolog.Logger) *AMQPSink {
	return &AMQPSink{
		ch:       ch,
		exchange: exchange,
		timeout:  2 * time.Second,
		logger:   logger.With().Str("component", "AMQPSink").Logger(),
	}
}

func (s *AMQPSink) Notify(e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		s.logger.Error().Err(err).Str("event", string(e.Name)).Msg("marshal event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err = s.ch.PublishWithContext(ctx, s.exchange, "engine."+string(e.Name), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   e.At,
		Body:        body,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", string(e.Name)).Msg("publish event")
	}
}
