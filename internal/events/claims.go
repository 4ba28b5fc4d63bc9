// Package events carries the claim-event feed: every durably
// claimed seat is announced on a per-showtime Redis pub/sub channel
// so all connected viewers can update their local taken-sets. The
// feed is advisory; only the seat_claims unique index is
// authoritative, so publish failures are logged and never fail a
// booking, and consumers must tolerate duplicate delivery.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebox/internal/model"
)

// ClaimEvent announces that one seat was durably claimed for a
// showtime. EventID deduplicates redelivery on the consumer side.
type ClaimEvent struct {
	EventID          string `json:"event_id"`
	ShowtimeID       uint64 `json:"showtime_id"`
	RowLabel         string `json:"row_label"`
	SeatNumber       uint32 `json:"seat_number"`
	BookingReference string `json:"booking_reference"`
	ClaimedAt        string `json:"claimed_at"`
}

// Seat returns the event's seat reference.
func (e ClaimEvent) Seat() model.SeatRef {
	return model.SeatRef{RowLabel: e.RowLabel, SeatNumber: e.SeatNumber}
}

// ChannelFor names the pub/sub channel of one showtime's claim
// namespace. Claims are scoped per showtime, so channels are too.
func ChannelFor(showtimeID uint64) string {
	return fmt.Sprintf("claims:%d", showtimeID)
}

// Publisher fans claim events out over Redis pub/sub. A nil client
// degrades to a no-op so the booking path keeps working when Redis
// is down; watchers fall back to re-fetching the seat snapshot.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher returns a Publisher using the given Redis client,
// which may be nil.
func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

// PublishClaims emits one ClaimEvent per claimed seat. Failures are
// logged and the first error is returned so callers can decide to
// log it too, but a booking is never rolled back over the feed.
func (p *Publisher) PublishClaims(ctx context.Context, showtimeID uint64, bookingRef string, seats []model.SeatRef) error {
	if p.rdb == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var firstErr error
	for _, s := range seats {
		ev := ClaimEvent{
			EventID:          uuid.NewString(),
			ShowtimeID:       showtimeID,
			RowLabel:         s.RowLabel,
			SeatNumber:       s.SeatNumber,
			BookingReference: bookingRef,
			ClaimedAt:        now,
		}
		body, err := json.Marshal(ev)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := p.rdb.Publish(ctx, ChannelFor(showtimeID), body).Err(); err != nil {
			log.Printf("claims: publish %s for showtime %d failed: %v", s.Label(), showtimeID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Subscriber delivers a showtime's claim events to one consumer.
type Subscriber struct {
	rdb *redis.Client
}

// NewSubscriber returns a Subscriber using the given Redis client,
// which may be nil (Subscribe then fails immediately).
func NewSubscriber(rdb *redis.Client) *Subscriber { return &Subscriber{rdb: rdb} }

// Subscribe opens the showtime's channel and decodes events into the
// returned channel until ctx is cancelled or stop is called.
// Undecodable payloads are logged and skipped.
func (s *Subscriber) Subscribe(ctx context.Context, showtimeID uint64) (<-chan ClaimEvent, func(), error) {
	if s.rdb == nil {
		return nil, nil, fmt.Errorf("claims: no redis client configured")
	}
	sub := s.rdb.Subscribe(ctx, ChannelFor(showtimeID))
	// Force the subscription to be established before we report success.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}
	out := make(chan ClaimEvent)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev ClaimEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("claims: drop undecodable event on %s: %v", msg.Channel, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = sub.Close() }
	return out, stop, nil
}

// TakenSet is a process-scoped view of a showtime's claimed seats:
// seeded from a snapshot and advanced by applying claim events. It
// is explicitly invalidated by events rather than trusted
// indefinitely, and applying is idempotent so duplicate delivery is
// harmless.
type TakenSet struct {
	mu    sync.Mutex
	seats map[model.SeatRef]bool
}

// NewTakenSet builds a TakenSet seeded with the given snapshot.
func NewTakenSet(snapshot []model.SeatRef) *TakenSet {
	t := &TakenSet{seats: make(map[model.SeatRef]bool, len(snapshot))}
	for _, s := range snapshot {
		t.seats[s] = true
	}
	return t
}

// Apply marks the event's seat taken and reports whether the seat
// was newly added. Re-applying the same seat returns false.
func (t *TakenSet) Apply(ev ClaimEvent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	seat := ev.Seat()
	if t.seats[seat] {
		return false
	}
	t.seats[seat] = true
	return true
}

// Has reports whether the seat is known to be taken.
func (t *TakenSet) Has(seat model.SeatRef) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seats[seat]
}

// Len returns the number of distinct taken seats.
func (t *TakenSet) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seats)
}
