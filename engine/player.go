package engine

// turnState tracks the per-turn draw budget. It is reset whenever a turn
// ends so the counters can never leak across turns.
type turnState struct {
	drawnFromDeck        int
	drawnFromDiscardPile int
}

// Player is one participant: a hand, a hidden foot reserve, at most one
// book per rank, and the per-turn and per-round bookkeeping around them.
// Players are identified by a stable index assigned at game construction.
type Player struct {
	id   int
	name string

	hand  []Card
	foot  []Card
	books map[uint8]*Book

	turn              turnState
	laidDownThisRound bool
	points            int
}

func newPlayer(id int, name string) *Player {
	return &Player{id: id, name: name, books: make(map[uint8]*Book)}
}

// ID returns the player's stable index in turn order.
func (p *Player) ID() int { return p.id }

// Name returns the player's name.
func (p *Player) Name() string { return p.name }

// Points returns the player's current points for the active round.
func (p *Player) Points() int { return p.points }

// Hand returns a copy of the player's hand.
func (p *Player) Hand() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// Foot returns a copy of the player's foot.
func (p *Player) Foot() []Card {
	out := make([]Card, len(p.foot))
	copy(out, p.foot)
	return out
}

// Book returns the player's book of the given rank, or nil.
func (p *Player) Book(rank uint8) *Book { return p.books[rank] }

// Books returns the player's books keyed by rank.
func (p *Player) Books() map[uint8]*Book {
	out := make(map[uint8]*Book, len(p.books))
	for r, b := range p.books {
		out[r] = b
	}
	return out
}

// HasLaidDownThisRound reports whether the player has made their initial
// lay-down for the active round.
func (p *Player) HasLaidDownThisRound() bool { return p.laidDownThisRound }

// CardsDrawnFromDeck returns the number of deck draws this turn.
func (p *Player) CardsDrawnFromDeck() int { return p.turn.drawnFromDeck }

// CardsDrawnFromDiscardPile returns the number of discard-pile draws this turn.
func (p *Player) CardsDrawnFromDiscardPile() int { return p.turn.drawnFromDiscardPile }

// CanDrawFromDeck reports whether the player still has deck draws left in
// the two-draw turn budget.
func (p *Player) CanDrawFromDeck() bool {
	return p.turn.drawnFromDeck+p.turn.drawnFromDiscardPile < 2
}

// CanDrawFromDiscardPile reports whether the player may draw from the
// discard pile: at most one discard draw per turn, and it still counts
// against the two-draw budget.
func (p *Player) CanDrawFromDiscardPile() bool {
	return p.turn.drawnFromDeck < 2 && p.turn.drawnFromDiscardPile < 1
}

// CanEndTurn reports whether the player has drawn their two cards and may
// discard to end the turn.
func (p *Player) CanEndTurn() bool {
	return p.turn.drawnFromDeck+p.turn.drawnFromDiscardPile == 2
}

// CanGoOut reports whether the player may end the round: hand and foot both
// empty (the foot already picked up), and at least one complete natural and
// one complete unnatural book.
func (p *Player) CanGoOut() bool {
	return len(p.hand) == 0 && len(p.foot) == 0 && p.hasGoOutBooks()
}

// hasGoOutBooks reports whether the player holds both a complete natural
// and a complete unnatural book.
func (p *Player) hasGoOutBooks() bool {
	hasNatural, hasUnnatural := false, false
	for _, b := range p.books {
		if !b.IsComplete() {
			continue
		}
		if b.IsNatural() {
			hasNatural = true
		} else {
			hasUnnatural = true
		}
	}
	return hasNatural && hasUnnatural
}

func (p *Player) addToHand(c Card) { p.hand = append(p.hand, c) }

// handIndex finds the first hand slot holding c, or -1.
func (p *Player) handIndex(c Card) int {
	for i, h := range p.hand {
		if h == c {
			return i
		}
	}
	return -1
}

// hasAllInHand reports whether the hand contains every card in the given
// multiset.
func (p *Player) hasAllInHand(cards []Card) bool {
	remaining := make([]Card, len(p.hand))
	copy(remaining, p.hand)
	for _, c := range cards {
		found := -1
		for i, h := range remaining {
			if h == c {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		remaining[found] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return true
}

// removeCardFromHand removes one copy of c from the hand.
func (p *Player) removeCardFromHand(c Card) error {
	i := p.handIndex(c)
	if i < 0 {
		return ErrCardNotInHand
	}
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	return nil
}

// removeCardsFromHand removes one copy of each card. The whole multiset is
// verified before anything is removed, so a failure leaves the hand intact.
func (p *Player) removeCardsFromHand(cards []Card) error {
	if !p.hasAllInHand(cards) {
		return ErrCardNotInHand
	}
	for _, c := range cards {
		i := p.handIndex(c)
		p.hand = append(p.hand[:i], p.hand[i+1:]...)
	}
	return nil
}

// startBook forms a new book from handCards plus any extra cards sourced
// from outside the hand (the popped discard top). All validation happens
// before the hand or the book map is touched.
func (p *Player) startBook(handCards []Card, extra ...Card) (*Book, error) {
	if !p.hasAllInHand(handCards) {
		return nil, ErrCardNotInHand
	}
	all := make([]Card, 0, len(handCards)+len(extra))
	all = append(all, handCards...)
	all = append(all, extra...)
	book, err := NewBook(all)
	if err != nil {
		return nil, err
	}
	if _, exists := p.books[book.Rank()]; exists {
		return nil, ErrBookAlreadyExists
	}
	if err := p.removeCardsFromHand(handCards); err != nil {
		return nil, err
	}
	p.books[book.Rank()] = book
	return book, nil
}

// addCardsToBook adds cards from the hand to an existing book. Everything
// is validated up front; a failure mutates nothing.
func (p *Player) addCardsToBook(cards []Card, rank uint8) error {
	book, ok := p.books[rank]
	if !ok {
		return ErrPlayerDoesntHaveBook
	}
	if !p.hasAllInHand(cards) {
		return ErrCardNotInHand
	}
	if err := book.checkAddAll(cards); err != nil {
		return err
	}
	for _, c := range cards {
		if !c.IsWild() {
			book.AddCard(c)
		}
	}
	for _, c := range cards {
		if c.IsWild() {
			book.AddCard(c)
		}
	}
	return p.removeCardsFromHand(cards)
}

// pickUpFootIfNeeded moves the foot into the empty hand the first time the
// hand empties while the foot is still held.
func (p *Player) pickUpFootIfNeeded() {
	if len(p.hand) == 0 && len(p.foot) > 0 {
		p.hand = p.foot
		p.foot = nil
	}
}

// recomputePoints recalculates the player's points for the active round
// from their laid-down books. Completed-book bonuses are not yet scored.
func (p *Player) recomputePoints() {
	total := 0
	for _, b := range p.books {
		total += b.PointValue()
	}
	p.points = total
}

// turnEnded resets the per-turn draw counters.
func (p *Player) turnEnded() {
	p.turn = turnState{}
}

// roundEnded resets everything scoped to the round: draw counters, the
// lay-down flag, and the books. Hand and foot are replaced by the next
// round's deal.
func (p *Player) roundEnded() {
	p.turnEnded()
	p.laidDownThisRound = false
	p.books = make(map[uint8]*Book)
	p.hand = nil
	p.foot = nil
}
