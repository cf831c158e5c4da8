package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/couchcryptid/county-home-values/internal/config"
	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/couchcryptid/county-home-values/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Table header values.
const (
	TableGrowth  = "growth"
	TableRanking = "ranking"
)

// GrowthMessage is the value of a growth record on the sink topic. Percent is
// null when growth is undefined.
type GrowthMessage struct {
	RegionID int      `json:"region_id"`
	County   string   `json:"county"`
	State    string   `json:"state"`
	Window   string   `json:"window"`
	Percent  *float64 `json:"annualized_growth_pct"`
}

// RankingMessage is the value of one state's count in a ranking.
type RankingMessage struct {
	Date  string `json:"date"`
	State string `json:"state"`
	Count int    `json:"count"`
}

// Writer produces the derived tables to a Kafka topic.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// LoadSnapshot publishes every growth record and ranking count of snap in a
// single WriteMessages call.
func (w *Writer) LoadSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	w.metrics.PublishedMessages.Add(float64(len(msgs)))
	w.logger.Info("snapshot published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func snapshotMessages(snap *domain.Snapshot) ([]kafkago.Message, error) {
	builtAt := snap.BuiltAt.UTC().Format(time.RFC3339)
	msgs := make([]kafkago.Message, 0, len(snap.Growth)+len(snap.Rankings)*8)

	for _, g := range snap.Growth {
		msg, err := serializeGrowth(g, builtAt)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	for _, r := range snap.Rankings {
		for _, c := range r.Counts {
			msg, err := serializeRanking(r.Date, c, builtAt)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeGrowth marshals a growth record keyed by region and window.
func serializeGrowth(g domain.GrowthRecord, builtAt string) (kafkago.Message, error) {
	m := GrowthMessage{
		RegionID: g.RegionID,
		County:   g.County,
		State:    g.State,
		Window:   g.Window.String(),
	}
	if !math.IsNaN(g.Percent) {
		p := g.Percent
		m.Percent = &p
	}
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize growth record: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(strconv.Itoa(g.RegionID) + "/" + m.Window),
		Value:   data,
		Headers: headers(TableGrowth, builtAt),
	}, nil
}

// serializeRanking marshals one state's count keyed by date and state.
func serializeRanking(date string, c domain.RankingCount, builtAt string) (kafkago.Message, error) {
	data, err := json.Marshal(RankingMessage{Date: date, State: c.State, Count: c.Count})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize ranking count: %w", err)
	}
	return kafkago.Message{
		Key:     []byte(date + "/" + c.State),
		Value:   data,
		Headers: headers(TableRanking, builtAt),
	}, nil
}

func headers(table, builtAt string) []kafkago.Header {
	return []kafkago.Header{
		{Key: "table", Value: []byte(table)},
		{Key: "built_at", Value: []byte(builtAt)},
	}
}
