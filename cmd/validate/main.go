// Command validate consumes rendered overlay messages from Kafka and checks
// their integrity: GeoJSON shape, color palette membership, coordinate
// ranges, and header consistency. Useful after wiring a new downstream
// consumer or changing the projection.
//
// Usage:
//
//	go run ./cmd/validate -brokers localhost:9092 -topic rendered-overlays -max 50
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/seislive/intensity-overlay/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka broker addresses")
	topic := flag.String("topic", "rendered-overlays", "topic to consume")
	maxMessages := flag.Int("max", 100, "maximum messages to validate")
	timeout := flag.Duration("timeout", 10*time.Second, "give up waiting for messages after this long")
	flag.Parse()

	if code := run(*brokers, *topic, *maxMessages, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(brokers, topic string, maxMessages int, timeout time.Duration) int {
	fmt.Println("=== Rendered Overlay Validation ===")
	fmt.Println()

	msgs, err := consume(brokers, topic, maxMessages, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: consume: %v\n", err)
		return 1
	}
	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "FATAL: no messages received before timeout")
		return 1
	}

	phases := []*phase{
		validateEnvelopes(msgs),
		validateFeatures(msgs),
		validateOrdering(msgs),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Messages: %d\n", len(msgs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Consumption ──

func consume(brokers, topic string, maxMessages int, timeout time.Duration) ([]kafkago.Message, error) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     strings.Split(brokers, ","),
		Topic:       topic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var msgs []kafkago.Message
	for len(msgs) < maxMessages {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			// Timeout just means we drained what was there.
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func header(msg *kafkago.Message, key string) (string, bool) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

// ── Phase 1: Envelope ──
// Keys, headers, and payload decodability.

func validateEnvelopes(msgs []kafkago.Message) *phase {
	p := &phase{name: "Phase 1: Envelope (keys and headers)"}

	for i := range msgs {
		msg := &msgs[i]

		if len(msg.Key) != 14 {
			p.errorf("message %d: key %q is not a 14-digit timestamp", i, msg.Key)
		} else if _, err := time.Parse("20060102150405", string(msg.Key)); err != nil {
			p.errorf("message %d: key %q does not parse as a timestamp", i, msg.Key)
		}

		observedAt, ok := header(msg, "observed_at")
		if !ok {
			p.errorf("message %d: missing observed_at header", i)
		} else if _, err := time.Parse(time.RFC3339, observedAt); err != nil {
			p.errorf("message %d: observed_at %q is not RFC3339", i, observedAt)
		}

		countStr, ok := header(msg, "feature_count")
		if !ok {
			p.errorf("message %d: missing feature_count header", i)
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			p.errorf("message %d: feature_count %q is not an integer", i, countStr)
			continue
		}

		var fc domain.FeatureCollection
		if err := json.Unmarshal(msg.Value, &fc); err != nil {
			p.errorf("message %d: payload does not decode: %v", i, err)
			continue
		}
		if len(fc.Features) != count {
			p.errorf("message %d: feature_count header says %d, payload has %d", i, count, len(fc.Features))
		}
	}
	return p
}

// ── Phase 2: Features ──
// GeoJSON shape, palette membership, coordinate ranges.

func validateFeatures(msgs []kafkago.Message) *phase {
	p := &phase{name: "Phase 2: Features (GeoJSON integrity)"}

	palette := knownColors()

	for i := range msgs {
		var fc domain.FeatureCollection
		if err := json.Unmarshal(msgs[i].Value, &fc); err != nil {
			continue // reported in phase 1
		}

		if fc.Type != "FeatureCollection" {
			p.errorf("message %d: type is %q, want FeatureCollection", i, fc.Type)
		}

		for j, f := range fc.Features {
			if f.Type != "Feature" {
				p.errorf("message %d feature %d: type is %q", i, j, f.Type)
			}
			if f.Geometry.Type != "Point" {
				p.errorf("message %d feature %d: geometry type is %q", i, j, f.Geometry.Type)
			}

			lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
			if lon < -180 || lon > 180 {
				p.errorf("message %d feature %d: longitude %g out of range", i, j, lon)
			}
			if lat < -90 || lat > 90 {
				p.errorf("message %d feature %d: latitude %g out of range", i, j, lat)
			}

			if !palette[f.Properties.Color] {
				p.errorf("message %d feature %d: color %q not in palette", i, j, f.Properties.Color)
			}
			if f.Properties.Radius <= 0 {
				p.errorf("message %d feature %d: radius %g is not positive", i, j, f.Properties.Radius)
			}
			if len(f.Properties.Code) != 1 || f.Properties.Code[0] < 'a' || f.Properties.Code[0] > 'x' {
				p.errorf("message %d feature %d: code %q is not an intensity level", i, j, f.Properties.Code)
			}
		}
	}
	return p
}

// knownColors builds the set of colors the projection can emit: the scale
// entries above the display threshold plus the unknown-code fallback.
func knownColors() map[string]bool {
	colors := map[string]bool{domain.FallbackColor: true}
	for c := byte('a'); c <= 'x'; c++ {
		if domain.BelowThreshold(c) {
			continue
		}
		colors[domain.ColorForCode(c)] = true
	}
	return colors
}

// ── Phase 3: Ordering ──
// Timestamp keys must be non-decreasing within a partition.

func validateOrdering(msgs []kafkago.Message) *phase {
	p := &phase{name: "Phase 3: Ordering (per-partition keys)"}

	last := map[int]string{}
	for i := range msgs {
		key := string(msgs[i].Key)
		part := msgs[i].Partition
		if prev, ok := last[part]; ok && key < prev {
			p.errorf("message %d: key %s precedes previous key %s on partition %d", i, key, prev, part)
		}
		last[part] = key
	}
	return p
}
