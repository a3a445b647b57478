package game

// EventType represents a game event type with type safety
type EventType string

// EventType constants in the order a round emits them.
const (
	EventTypeRoundStarted EventType = "round_started"
	EventTypeDiceRolled   EventType = "dice_rolled"
	EventTypeBidPlaced    EventType = "bid_placed"
	EventTypeLiarCalled   EventType = "liar_called"
	EventTypeDiceRevealed EventType = "dice_revealed"
	EventTypeRoundEnded   EventType = "round_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a record of one engine transition.
type Event interface {
	Type() EventType
	Round() int
}

// RoundStarted is emitted first in every round.
type RoundStarted struct {
	RoundIndex int
	DiceCounts []int
}

func (e RoundStarted) Type() EventType { return EventTypeRoundStarted }
func (e RoundStarted) Round() int      { return e.RoundIndex }

// DiceRolled carries every player's fresh dice. Subscribers that face agents
// must not forward it unfiltered.
type DiceRolled struct {
	RoundIndex int
	Dice       [][]int
}

func (e DiceRolled) Type() EventType { return EventTypeDiceRolled }
func (e DiceRolled) Round() int      { return e.RoundIndex }

// BidPlaced is emitted for every accepted bid.
type BidPlaced struct {
	RoundIndex int
	TurnIndex  int
	Player     int
	Bid        Bid
}

func (e BidPlaced) Type() EventType { return EventTypeBidPlaced }
func (e BidPlaced) Round() int      { return e.RoundIndex }

// LiarCalled is emitted when a player challenges the last bid.
type LiarCalled struct {
	RoundIndex int
	Caller     int
	Bid        Bid
}

func (e LiarCalled) Type() EventType { return EventTypeLiarCalled }
func (e LiarCalled) Round() int      { return e.RoundIndex }

// DiceRevealed exposes all dice after a challenge.
type DiceRevealed struct {
	RoundIndex int
	Dice       [][]int
}

func (e DiceRevealed) Type() EventType { return EventTypeDiceRevealed }
func (e DiceRevealed) Round() int      { return e.RoundIndex }

// RoundEnded closes a round with its outcome.
type RoundEnded struct {
	RoundIndex int
	Winner     int
	Loser      int
	Bid        Bid
	MatchCount int
	WasTrue    bool
}

func (e RoundEnded) Type() EventType { return EventTypeRoundEnded }
func (e RoundEnded) Round() int      { return e.RoundIndex }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(event Event) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus delivers events synchronously in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. Subscribers must be comparable.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
