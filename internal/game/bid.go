package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Bid claims that at least Quantity dice across all hands show Face.
type Bid struct {
	Quantity int
	Face     int
}

// Validate checks the bid against the configured faces and the dice in play.
func (b Bid) Validate(cfg Config) error {
	if !cfg.HasFace(b.Face) {
		return &ValidationError{Field: "face", Value: b.Face, Allowed: cfg.Faces}
	}
	total := cfg.TotalDice()
	if b.Quantity < 1 || b.Quantity > total {
		return &ValidationError{Field: "quantity", Value: b.Quantity, Min: 1, Max: total}
	}
	return nil
}

// IsHigherThan reports whether b strictly outranks other. Every bid outranks
// the absence of a bid.
func (b Bid) IsHigherThan(other *Bid) bool {
	if other == nil {
		return true
	}
	return b.Compare(*other) > 0
}

// Compare orders bids by quantity, then face.
func (b Bid) Compare(other Bid) int {
	switch {
	case b.Quantity != other.Quantity:
		if b.Quantity < other.Quantity {
			return -1
		}
		return 1
	case b.Face != other.Face:
		if b.Face < other.Face {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (b Bid) String() string {
	return fmt.Sprintf("%dx%d", b.Quantity, b.Face)
}

// ParseBid parses the "QxF" form produced by String.
func ParseBid(s string) (Bid, error) {
	qs, fs, ok := strings.Cut(s, "x")
	if !ok {
		return Bid{}, fmt.Errorf("parse bid %q: missing 'x'", s)
	}
	q, err := strconv.Atoi(qs)
	if err != nil {
		return Bid{}, fmt.Errorf("parse bid %q: %w", s, err)
	}
	f, err := strconv.Atoi(fs)
	if err != nil {
		return Bid{}, fmt.Errorf("parse bid %q: %w", s, err)
	}
	return Bid{Quantity: q, Face: f}, nil
}
