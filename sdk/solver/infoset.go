package solver

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/liarsdice/internal/game"
)

// MaxDicePerPlayer bounds the hand size an InfoSetKey can hold.
const MaxDicePerPlayer = 10

// Hand is a sorted multiset of dice stored inline so it can be used as a map
// key.
type Hand struct {
	n    uint8
	dice [MaxDicePerPlayer]uint8
}

// NewHand sorts dice into a Hand. It panics if dice exceeds MaxDicePerPlayer
// or a face does not fit in a byte; TrainingConfig.Validate rules both out.
func NewHand(dice []int) Hand {
	h, ok := TryNewHand(dice)
	if !ok {
		panic(fmt.Sprintf("solver: hand %v does not fit %d byte-sized dice", dice, MaxDicePerPlayer))
	}
	return h
}

// TryNewHand is NewHand for untrusted input. It reports false instead of
// panicking when the hand cannot be encoded.
func TryNewHand(dice []int) (Hand, bool) {
	if len(dice) > MaxDicePerPlayer {
		return Hand{}, false
	}
	sorted := slices.Clone(dice)
	slices.Sort(sorted)
	h := Hand{n: uint8(len(sorted))}
	for i, d := range sorted {
		if d < 0 || d > 255 {
			return Hand{}, false
		}
		h.dice[i] = uint8(d)
	}
	return h, true
}

// Len is the number of dice in the hand.
func (h Hand) Len() int { return int(h.n) }

// Dice returns the sorted dice.
func (h Hand) Dice() []int {
	out := make([]int, h.n)
	for i := range out {
		out[i] = int(h.dice[i])
	}
	return out
}

// Count returns how many dice show face.
func (h Hand) Count(face int) int {
	n := 0
	for i := 0; i < int(h.n); i++ {
		if int(h.dice[i]) == face {
			n++
		}
	}
	return n
}

func (h Hand) String() string {
	parts := make([]string, h.n)
	for i := range parts {
		parts[i] = strconv.Itoa(int(h.dice[i]))
	}
	return strings.Join(parts, ",")
}

// InfoSetKey is everything a player knows when acting: their own dice and
// the bid to beat. Quantity and Face are zero before the first bid.
type InfoSetKey struct {
	Hand     Hand
	Quantity int
	Face     int
}

// NewInfoSetKey builds the key for dice facing last (nil at the opening).
func NewInfoSetKey(dice []int, last *game.Bid) InfoSetKey {
	return keyFor(NewHand(dice), last)
}

// TryInfoSetKey is NewInfoSetKey for hands that may not fit a key, such as
// games with more than MaxDicePerPlayer dice each.
func TryInfoSetKey(dice []int, last *game.Bid) (InfoSetKey, bool) {
	h, ok := TryNewHand(dice)
	if !ok {
		return InfoSetKey{}, false
	}
	return keyFor(h, last), true
}

func keyFor(h Hand, last *game.Bid) InfoSetKey {
	k := InfoSetKey{Hand: h}
	if last != nil {
		k.Quantity = last.Quantity
		k.Face = last.Face
	}
	return k
}

// LastBid returns the bid to beat, or nil at the opening.
func (k InfoSetKey) LastBid() *game.Bid {
	if k.Quantity == 0 {
		return nil
	}
	return &game.Bid{Quantity: k.Quantity, Face: k.Face}
}

// String renders "dice|QxF", or "dice|-" at the opening.
func (k InfoSetKey) String() string {
	if k.Quantity == 0 {
		return k.Hand.String() + "|-"
	}
	return fmt.Sprintf("%s|%dx%d", k.Hand, k.Quantity, k.Face)
}

// ParseInfoSetKey parses the output of String.
func ParseInfoSetKey(s string) (InfoSetKey, error) {
	handPart, bidPart, ok := strings.Cut(s, "|")
	if !ok {
		return InfoSetKey{}, fmt.Errorf("parse info set %q: missing '|'", s)
	}
	dice, err := parseInts(handPart)
	if err != nil {
		return InfoSetKey{}, fmt.Errorf("parse info set %q: %w", s, err)
	}
	hand, ok := TryNewHand(dice)
	if !ok {
		return InfoSetKey{}, fmt.Errorf("parse info set %q: hand cannot be encoded", s)
	}
	if bidPart == "-" {
		return keyFor(hand, nil), nil
	}
	bid, err := game.ParseBid(bidPart)
	if err != nil {
		return InfoSetKey{}, fmt.Errorf("parse info set %q: %w", s, err)
	}
	return keyFor(hand, &bid), nil
}

// ConfigKey identifies a trained configuration: per-player dice counts and
// the face set.
type ConfigKey struct {
	dice  string
	faces string
}

// NewConfigKey builds a key from dice counts and faces.
func NewConfigKey(diceCounts, faces []int) ConfigKey {
	return ConfigKey{dice: joinInts(diceCounts), faces: joinInts(faces)}
}

// DiceCounts returns the per-player dice counts.
func (k ConfigKey) DiceCounts() []int {
	out, _ := parseInts(k.dice)
	return out
}

// Faces returns the face set.
func (k ConfigKey) Faces() []int {
	out, _ := parseInts(k.faces)
	return out
}

func (k ConfigKey) String() string {
	return "dice=" + k.dice + " faces=" + k.faces
}

// Compare orders keys by dice counts, then faces.
func (k ConfigKey) Compare(other ConfigKey) int {
	if c := slices.Compare(k.DiceCounts(), other.DiceCounts()); c != 0 {
		return c
	}
	return slices.Compare(k.Faces(), other.Faces())
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
