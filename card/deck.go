package card

import "math/rand"

// DeckSize is the number of cards in a full Belote deck: 4 suits x 8 ranks.
const DeckSize = len(Suits) * len(Ranks)

// FullDeck returns the 32 cards formed by the cross-product of suits and
// ranks, in fixed deal order (suit-major, rank-minor).
func FullDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a uniformly random permutation of cards.
func Shuffle(cards []Card) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// DealFour partitions a shuffled 32-card deck into four equal hands of
// eight, in deal order matching Suits/Positions (N, E, S, W).
func DealFour(shuffled []Card) [4][]Card {
	var hands [4][]Card
	const handSize = DeckSize / 4
	for i := 0; i < 4; i++ {
		hand := make([]Card, handSize)
		copy(hand, shuffled[i*handSize:(i+1)*handSize])
		hands[i] = hand
	}
	return hands
}

// BuildAndDeal shuffles a fresh 32-card deck and deals four 8-card hands.
func BuildAndDeal() [4][]Card {
	return DealFour(Shuffle(FullDeck()))
}
