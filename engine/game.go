// Package engine implements the Hand and Foot rules: the card, deck, book
// and player model, the turn-by-turn action state machine, the wire-encoded
// action vocabulary, and the drag-and-drop action builder.
//
// The engine is a pure, synchronous state machine. Given the same initial
// per-round deck orderings and the same ordered action log it produces
// byte-identical state, which is what lets a replay harness or a sync layer
// treat the action log as the source of truth.
package engine

// rngState is an inline xorshift64 stream used for every shuffle, so that a
// seeded game is fully deterministic.
type rngState uint64

func (r *rngState) next() uint64 {
	x := uint64(*r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = rngState(x)
	return x
}

// randN returns a random number in [0, n).
func (r *rngState) randN(n uint64) uint64 {
	return r.next() % n
}

// Game orchestrates a match: the four round decks, the shared discard pile,
// the players in fixed turn order, and the dispatch of validated actions.
// A Game is driven by exactly one logical thread of control; it does no
// locking of its own.
type Game struct {
	players []*Player
	decks   map[Round]*Deck
	discard []Card
	current int
	round   Round
	rng     rngState

	wentOut *Player // set when a player goes out in the final round
}

// NewGame builds a match for the given player names, shuffles one deck per
// round from the seed, and deals the first round.
func NewGame(names []string, seed uint64) (*Game, error) {
	g, err := newGameBase(names, seed)
	if err != nil {
		return nil, err
	}
	units := len(names) + 1
	for _, r := range Rounds {
		d := NewDeck(units)
		d.Shuffle(&g.rng)
		g.decks[r] = d
	}
	if err := g.deal(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewSeededGame builds a match from pre-ordered per-round decks, consumed
// back-to-front as draws. Mid-round reshuffles still happen, driven by the
// fixed internal seed, so replays of the same decks and actions are
// byte-identical.
func NewSeededGame(names []string, decks map[Round][]Card) (*Game, error) {
	g, err := newGameBase(names, 1)
	if err != nil {
		return nil, err
	}
	for _, r := range Rounds {
		g.decks[r] = DeckFromCards(decks[r])
	}
	if err := g.deal(); err != nil {
		return nil, err
	}
	return g, nil
}

func newGameBase(names []string, seed uint64) (*Game, error) {
	if len(names) < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(names) > MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	g := &Game{
		decks: make(map[Round]*Deck, len(Rounds)),
		round: RoundNinety,
		rng:   rngState(seed),
	}
	if g.rng == 0 {
		g.rng = 1 // xorshift can't start at 0
	}
	for i, name := range names {
		g.players = append(g.players, newPlayer(i, name))
	}
	return g, nil
}

// deal gives every player a fresh hand and foot from the active round deck,
// player by player, hand before foot.
func (g *Game) deal() error {
	d := g.deck()
	for _, p := range g.players {
		for i := 0; i < HandSize; i++ {
			c, ok := d.Draw()
			if !ok {
				return ErrDeckIsEmpty
			}
			p.addToHand(c)
		}
		for i := 0; i < FootSize; i++ {
			c, ok := d.Draw()
			if !ok {
				return ErrDeckIsEmpty
			}
			p.foot = append(p.foot, c)
		}
	}
	return nil
}

// Round returns the active round, or RoundOver.
func (g *Game) Round() Round { return g.round }

// IsOver reports whether the match has ended.
func (g *Game) IsOver() bool { return g.round == RoundOver }

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player { return g.players[g.current] }

// Players returns the players in turn order.
func (g *Game) Players() []*Player { return g.players }

// PlayerNamed resolves a player by name, or nil.
func (g *Game) PlayerNamed(name string) *Player {
	for _, p := range g.players {
		if p.name == name {
			return p
		}
	}
	return nil
}

// WentOut returns the player who went out to end the match, or nil.
func (g *Game) WentOut() *Player { return g.wentOut }

// DiscardPile returns a copy of the discard pile, bottom to top.
func (g *Game) DiscardPile() []Card {
	out := make([]Card, len(g.discard))
	copy(out, g.discard)
	return out
}

// DiscardTop returns the top of the discard pile, or EmptyCard when empty.
func (g *Game) DiscardTop() Card {
	if len(g.discard) == 0 {
		return EmptyCard
	}
	return g.discard[len(g.discard)-1]
}

// deck returns the active round's deck.
func (g *Game) deck() *Deck { return g.decks[g.round] }

// DeckLen returns the number of cards left in the active round's deck.
func (g *Game) DeckLen() int {
	if g.round == RoundOver {
		return 0
	}
	return g.deck().Len()
}

// Apply validates and applies one action. Preconditions are checked before
// any state is mutated, so a returned error always leaves the game
// untouched. On success the acting player's points are recomputed.
func (g *Game) Apply(a Action) error {
	if g.round == RoundOver {
		return ErrGameIsOver
	}
	p := g.PlayerNamed(a.Player)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.id != g.current {
		return ErrNotYourTurn
	}

	var err error
	switch a.Type {
	case ActionDrawFromDeck:
		err = g.drawFromDeck(p)
	case ActionDrawFromDiscardPileAndAddToBook:
		err = g.drawFromDiscardPileAndAddToBook(p, a.Rank)
	case ActionDrawFromDiscardPileAndStartBook:
		err = g.drawFromDiscardPileAndStartBook(p, a.Cards)
	case ActionDiscardCard:
		err = g.discardCard(p, a.Card)
	case ActionLayDownInitialBooks:
		err = g.layDownInitialBooks(p, nil, a.Books)
	case ActionDrawFromDiscardPileAndLayDownInitialBooks:
		err = g.drawFromDiscardPileAndLayDownInitialBooks(p, a.PartialBook, a.Books)
	case ActionStartBook:
		err = g.startBook(p, a.Cards)
	case ActionAddCardsFromHandToBook:
		err = g.addCardsFromHandToBook(p, a.Cards, a.Rank)
	default:
		err = ErrInvalidAction
	}
	if err != nil {
		return err
	}
	p.recomputePoints()
	return nil
}

// drawFromDeck draws one card into the acting player's hand. If that draw
// empties the deck, the discard pile is folded back in and reshuffled; if
// the deck is still empty afterwards the round ends with nobody going out.
func (g *Game) drawFromDeck(p *Player) error {
	if !p.CanDrawFromDeck() {
		return ErrCannotDrawFromTheDeck
	}
	d := g.deck()
	card, ok := d.Draw()
	if !ok {
		return ErrDeckIsEmpty
	}
	p.addToHand(card)
	p.turn.drawnFromDeck++

	if d.IsEmpty() {
		g.replenishDeck()
		if d.IsEmpty() {
			g.endRound(nil)
		}
	}
	return nil
}

// replenishDeck folds the discard pile back into the active deck and
// reshuffles it. The discard pile is left empty.
func (g *Game) replenishDeck() {
	if len(g.discard) == 0 {
		return
	}
	d := g.deck()
	d.Replenish(g.discard)
	g.discard = nil
	d.Shuffle(&g.rng)
}

func (g *Game) drawFromDiscardPileAndAddToBook(p *Player, rankName string) error {
	rank, ok := ParseRank(rankName)
	if !ok {
		return ErrInvalidAction
	}
	if !p.CanDrawFromDiscardPile() || !p.HasLaidDownThisRound() {
		return ErrCannotDrawFromTheDiscardPile
	}
	if len(g.discard) == 0 {
		return ErrDiscardPileIsEmpty
	}
	book := p.Book(rank)
	if book == nil {
		return ErrPlayerDoesntHaveBook
	}
	top := g.DiscardTop()
	if err := book.checkAdd(top); err != nil {
		return err
	}
	g.discard = g.discard[:len(g.discard)-1]
	book.AddCard(top)
	p.turn.drawnFromDiscardPile++
	return nil
}

func (g *Game) drawFromDiscardPileAndStartBook(p *Player, cards []Card) error {
	if !p.CanDrawFromDiscardPile() {
		return ErrCannotDrawFromTheDiscardPile
	}
	if len(g.discard) == 0 {
		return ErrDiscardPileIsEmpty
	}
	top := g.DiscardTop()
	if _, err := p.startBook(cards, top); err != nil {
		return err
	}
	g.discard = g.discard[:len(g.discard)-1]
	p.turn.drawnFromDiscardPile++
	p.pickUpFootIfNeeded()
	return nil
}

// discardCard removes the card from hand and pushes it onto the discard
// pile, ending the turn. Discarding the last held card with the foot
// already gone either ends the round (when the player can go out) or is
// rejected outright; all of that is decided before anything is mutated.
func (g *Game) discardCard(p *Player, card *Card) error {
	if card == nil {
		return ErrInvalidAction
	}
	if !p.CanEndTurn() {
		return ErrCannotEndTurnYet
	}
	if p.handIndex(*card) < 0 {
		return ErrCardNotInHand
	}

	goingOut := false
	if len(p.hand) == 1 && len(p.foot) == 0 {
		if !p.hasGoOutBooks() {
			return ErrCannotGoOut
		}
		goingOut = true
	}

	p.removeCardFromHand(*card)
	g.discard = append(g.discard, *card)

	if goingOut {
		g.endRound(p)
		return nil
	}
	if len(p.hand) == 0 {
		p.pickUpFootIfNeeded()
		return nil
	}
	g.endTurn(p)
	return nil
}

// layDownInitialBooks validates and commits a player's initial lay-down.
// extra, when non-nil, is a card from outside the hand (the discard top)
// that completes the first group.
func (g *Game) layDownInitialBooks(p *Player, extra *Card, groups [][]Card) error {
	if p.HasLaidDownThisRound() {
		return ErrAlreadyLaidDownThisRound
	}

	// Dry-run every group so nothing is committed on failure.
	handCards := make([]Card, 0)
	total := 0
	ranks := make(map[uint8]bool)
	for i, group := range groups {
		cards := group
		if extra != nil && i == 0 {
			cards = append(append([]Card{}, group...), *extra)
		}
		book, err := NewBook(cards)
		if err != nil {
			return err
		}
		if ranks[book.Rank()] || p.Book(book.Rank()) != nil {
			return ErrBookAlreadyExists
		}
		ranks[book.Rank()] = true
		total += book.PointValue()
		handCards = append(handCards, group...)
	}
	if total < g.round.PointsNeeded() {
		return ErrNotEnoughPointsToLayDown
	}
	if !p.hasAllInHand(handCards) {
		return ErrCardNotInHand
	}

	for i, group := range groups {
		if extra != nil && i == 0 {
			p.startBook(group, *extra)
		} else {
			p.startBook(group)
		}
	}
	p.laidDownThisRound = true
	p.pickUpFootIfNeeded()
	return nil
}

func (g *Game) drawFromDiscardPileAndLayDownInitialBooks(p *Player, partial []Card, groups [][]Card) error {
	if p.HasLaidDownThisRound() {
		return ErrAlreadyLaidDownThisRound
	}
	if !p.CanDrawFromDiscardPile() {
		return ErrCannotDrawFromTheDiscardPile
	}
	if len(g.discard) == 0 {
		return ErrDiscardPileIsEmpty
	}
	top := g.DiscardTop()
	all := make([][]Card, 0, len(groups)+1)
	all = append(all, partial)
	all = append(all, groups...)
	if err := g.layDownInitialBooks(p, &top, all); err != nil {
		return err
	}
	g.discard = g.discard[:len(g.discard)-1]
	p.turn.drawnFromDiscardPile++
	return nil
}

// startBook starts a new book from hand cards. The builder only offers this
// move once the player has laid down, so that is not re-checked here.
func (g *Game) startBook(p *Player, cards []Card) error {
	if _, err := p.startBook(cards); err != nil {
		return err
	}
	p.pickUpFootIfNeeded()
	return nil
}

func (g *Game) addCardsFromHandToBook(p *Player, cards []Card, rankName string) error {
	rank, ok := ParseRank(rankName)
	if !ok {
		return ErrInvalidAction
	}
	if err := p.addCardsToBook(cards, rank); err != nil {
		return err
	}
	p.pickUpFootIfNeeded()
	return nil
}

// endTurn resets the acting player's draw counters and advances the
// current-player pointer in construction order, wrapping after the last.
func (g *Game) endTurn(p *Player) {
	p.turnEnded()
	g.current = (g.current + 1) % len(g.players)
}

// endRound closes the active round. goingOut is the player who went out, or
// nil when the round ended by deck exhaustion. Every player's points are
// recalculated and their round state reset; if another round remains, fresh
// hands and feet are dealt from its deck.
func (g *Game) endRound(goingOut *Player) {
	for _, p := range g.players {
		p.recomputePoints()
	}
	if goingOut != nil {
		goingOut.points += goingOutBonus()
	}
	for _, p := range g.players {
		p.roundEnded()
	}
	g.discard = nil
	g.round = g.round.Next()
	if g.round == RoundOver {
		g.wentOut = goingOut
		return
	}
	// The player after the one who closed the round leads the next one.
	g.current = (g.current + 1) % len(g.players)
	if err := g.deal(); err != nil {
		// A seeded deck too short to deal the next round ends the match.
		g.round = RoundOver
		g.wentOut = goingOut
		return
	}
	for _, p := range g.players {
		p.recomputePoints()
	}
}

// CardsInPlay counts every card across hands, feet, books, the discard pile
// and the active deck. For any reachable state within a round this equals
// the round deck's full composition.
func (g *Game) CardsInPlay() int {
	if g.round == RoundOver {
		return 0
	}
	total := g.deck().Len() + len(g.discard)
	for _, p := range g.players {
		total += len(p.hand) + len(p.foot)
		for _, b := range p.books {
			total += b.Size()
		}
	}
	return total
}
