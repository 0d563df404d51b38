// Package kafka publishes rendered overlays to a sink topic for downstream
// map renderers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/seislive/intensity-overlay/internal/config"
	"github.com/seislive/intensity-overlay/internal/domain"
)

// Writer produces overlay messages to the configured sink topic.
// It implements overlay.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishOverlay serializes and publishes one rendered overlay.
func (w *Writer) PublishOverlay(ctx context.Context, fc domain.FeatureCollection, snap domain.Snapshot) error {
	msg, err := serializeOverlay(fc, snap)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeOverlay marshals a feature collection into a Kafka message keyed by
// the snapshot's display timestamp, so replays of the same instant coalesce
// under compaction.
func serializeOverlay(fc domain.FeatureCollection, snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize overlay: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.DisplayTime().UTC().Format("20060102150405")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "observed_at", Value: []byte(snap.DisplayTime().UTC().Format(time.RFC3339))},
			{Key: "feature_count", Value: []byte(strconv.Itoa(len(fc.Features)))},
		},
	}, nil
}
