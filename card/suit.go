package card

// Suit is one of the four Belote suits.
type Suit byte

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var suitNames = [...]string{"Clubs", "Diamonds", "Hearts", "Spades"}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "?"
}

// JSONValue is the lowercase single-letter code used on the wire
// ("c|d|h|s"), matching the inbound play_card message format.
func (s Suit) JSONValue() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	}
	return "?"
}

// ParseSuit parses the case-insensitive single-letter wire code.
func ParseSuit(s string) (Suit, bool) {
	switch s {
	case "c", "C":
		return Clubs, true
	case "d", "D":
		return Diamonds, true
	case "h", "H":
		return Hearts, true
	case "s", "S":
		return Spades, true
	}
	return 0, false
}

// jackPriority breaks Jack-vs-Jack ties: Clubs > Diamonds > Hearts > Spades.
func (s Suit) jackPriority() int {
	switch s {
	case Clubs:
		return 4
	case Diamonds:
		return 3
	case Hearts:
		return 2
	case Spades:
		return 1
	}
	return 0
}

// Suits is the fixed deal order used to enumerate a full deck.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}
