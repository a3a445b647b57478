package game

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Record is an event stamped with its match and arrival order.
type Record struct {
	MatchID uuid.UUID
	Seq     int
	At      time.Time
	Event   Event
}

// Recorder is an in-memory EventSubscriber that keeps every event of a match.
type Recorder struct {
	mu      sync.Mutex
	matchID uuid.UUID
	clock   quartz.Clock
	records []Record
}

// NewRecorder creates a recorder with a fresh match ID. A nil clock uses the
// real clock.
func NewRecorder(clock quartz.Clock) *Recorder {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Recorder{matchID: uuid.New(), clock: clock}
}

// MatchID identifies the recorded match.
func (r *Recorder) MatchID() uuid.UUID { return r.matchID }

// OnEvent implements EventSubscriber.
func (r *Recorder) OnEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		MatchID: r.matchID,
		Seq:     len(r.records),
		At:      r.clock.Now(),
		Event:   event,
	})
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Event.Type()
	}
	return out
}
