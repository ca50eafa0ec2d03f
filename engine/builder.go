package engine

import "fmt"

// The action builder turns a stream of drag/drop gestures into exactly one
// legal action. After every gesture it narrows the set of still-possible
// action kinds and advertises the drag sources or drop targets that keep at
// least one kind alive. Gestures outside the advertised sets are caller
// bugs, not game-rule failures: the presentation layer must only offer what
// the builder advertised, so the builder panics instead of returning an
// error.

// SiteKind identifies a kind of drag source or drop destination.
type SiteKind uint8

const (
	SiteDeck SiteKind = iota
	SiteDiscardPile
	SiteHand
	SiteBook    // an existing book, identified by Rank
	SiteNewBook // a staging slot for a book being formed, identified by Slot
)

// Site is one drag source or drop destination.
type Site struct {
	Kind SiteKind
	Rank uint8 // set for SiteBook
	Slot int   // set for SiteNewBook
}

func DeckSite() Site            { return Site{Kind: SiteDeck} }
func DiscardPileSite() Site     { return Site{Kind: SiteDiscardPile} }
func HandSite() Site            { return Site{Kind: SiteHand} }
func BookSite(rank uint8) Site  { return Site{Kind: SiteBook, Rank: rank} }
func NewBookSite(slot int) Site { return Site{Kind: SiteNewBook, Slot: slot} }

func (s Site) String() string {
	switch s.Kind {
	case SiteDeck:
		return "deck"
	case SiteDiscardPile:
		return "discardPile"
	case SiteHand:
		return "hand"
	case SiteBook:
		return fmt.Sprintf("book(%s)", RankName(s.Rank))
	case SiteNewBook:
		return fmt.Sprintf("newBook(%d)", s.Slot)
	}
	return "?"
}

// BuilderPhase is the builder's gesture-machine phase.
type BuilderPhase uint8

const (
	PhaseIdle BuilderPhase = iota
	PhaseDragging
	PhaseComplexIdle
	PhaseComplexDragging
	PhaseFinished
)

// BuilderView is what the builder exposes after every gesture: the
// surviving action kinds and the gestures that keep at least one alive.
type BuilderView struct {
	Phase       BuilderPhase
	Candidates  []ActionType
	DragSources []Site
	DropTargets []Site
	CanFinish   bool
}

type gestureKind uint8

const (
	gestureDrag gestureKind = iota
	gestureDrop
	gestureDone
)

// gesture is one recorded transaction. The log of gestures is the single
// source of truth: every builder state is a fold over a prefix of it.
type gesture struct {
	kind   gestureKind
	source Site   // drag
	cards  []Card // drag
	dest   Site   // drop
}

// ActionBuilder incrementally narrows gestures down to one legal action for
// the current player. It never mutates the game.
type ActionBuilder struct {
	game   *Game
	player *Player
	log    []gesture
}

// NewActionBuilder starts a builder for the named player, who must be the
// current player of a game that is not over.
func NewActionBuilder(g *Game, playerName string) (*ActionBuilder, error) {
	if g.IsOver() {
		return nil, ErrGameIsOver
	}
	p := g.PlayerNamed(playerName)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.id != g.current {
		return nil, ErrNotYourTurn
	}
	return &ActionBuilder{game: g, player: p}, nil
}

// Drag records a drag of cards from a site. Deck drags carry no cards (the
// top card is face down); discard drags may pass nil or exactly the pile's
// top card; hand drags must name cards still held.
func (b *ActionBuilder) Drag(source Site, cards []Card) {
	s := b.fold()
	g := gesture{kind: gestureDrag, source: source, cards: cards}
	s.stepDrag(b, &g)
	b.log = append(b.log, g)
}

// Drop records dropping the in-flight drag at a destination.
func (b *ActionBuilder) Drop(dest Site) {
	s := b.fold()
	g := gesture{kind: gestureDrop, dest: dest}
	s.stepDrop(b, &g)
	b.log = append(b.log, g)
}

// Finish records the "done" gesture, moving the builder to Finished.
func (b *ActionBuilder) Finish() {
	s := b.fold()
	g := gesture{kind: gestureDone}
	s.stepDone(b)
	b.log = append(b.log, g)
}

// CancelLastDrag takes back the most recent drag transaction, whether it is
// still in flight or already dropped. Because state is a fold over the
// gesture log, cancellation is truncating the log at the last drag entry;
// the drag's drop, and a done gesture after it, go with it.
func (b *ActionBuilder) CancelLastDrag() {
	for i := len(b.log) - 1; i >= 0; i-- {
		if b.log[i].kind == gestureDrag {
			b.log = b.log[:i]
			return
		}
	}
	contractViolation("no drag to cancel")
}

// View reports the current narrowed state.
func (b *ActionBuilder) View() BuilderView {
	s := b.fold()
	v := BuilderView{Phase: s.phase, Candidates: append([]ActionType(nil), s.alive...)}
	switch s.phase {
	case PhaseIdle, PhaseComplexIdle:
		v.DragSources = s.dragSourceUnion(b)
		v.CanFinish = s.anyCanFinish(b)
	case PhaseDragging, PhaseComplexDragging:
		v.DropTargets = s.dropTargetUnion(b)
	}
	return v
}

// BuildAction materializes the single surviving action. Only callable once
// the builder is Finished.
func (b *ActionBuilder) BuildAction() Action {
	s := b.fold()
	if s.phase != PhaseFinished {
		contractViolation("builder is not finished")
	}
	kind := s.resolveKind()
	a := Action{Type: kind, Player: b.player.name}
	switch kind {
	case ActionDrawFromDeck:
		// No payload.
	case ActionDrawFromDiscardPileAndAddToBook:
		a.Rank = RankName(s.firstDrop.Rank)
	case ActionDiscardCard:
		card := s.firstDragCards[0]
		a.Card = &card
	case ActionAddCardsFromHandToBook:
		a.Cards = append([]Card(nil), s.firstDragCards...)
		a.Rank = RankName(s.firstDrop.Rank)
	case ActionStartBook:
		a.Cards = append([]Card(nil), s.staged[0]...)
	case ActionDrawFromDiscardPileAndStartBook:
		a.Cards = withoutCard(s.staged[0], s.discardCard)
	case ActionLayDownInitialBooks:
		for _, group := range s.staged {
			a.Books = append(a.Books, append([]Card(nil), group...))
		}
	case ActionDrawFromDiscardPileAndLayDownInitialBooks:
		a.PartialBook = withoutCard(s.staged[s.discardSlot], s.discardCard)
		for slot, group := range s.staged {
			if slot != s.discardSlot {
				a.Books = append(a.Books, append([]Card(nil), group...))
			}
		}
	}
	return a
}

// resolveKind disambiguates the surviving candidates. The only pairs that
// may coexist in Finished differ solely by whether a discard-pile draw
// occurred, so the recorded drag sources decide.
func (s *foldState) resolveKind() ActionType {
	if len(s.alive) == 1 {
		return s.alive[0]
	}
	for _, k := range s.alive {
		discardKind := k == ActionDrawFromDiscardPileAndStartBook ||
			k == ActionDrawFromDiscardPileAndLayDownInitialBooks
		if discardKind == s.discardTaken {
			return k
		}
	}
	contractViolation("finished with indistinguishable candidates %v", s.alive)
	return ""
}

// withoutCard returns cards minus one copy of c.
func withoutCard(cards []Card, c Card) []Card {
	out := make([]Card, 0, len(cards)-1)
	removed := false
	for _, x := range cards {
		if !removed && x == c {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out
}

func contractViolation(format string, args ...any) {
	panic("action builder: " + fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Fold
// ---------------------------------------------------------------------------

var allActionKinds = []ActionType{
	ActionDrawFromDeck,
	ActionDrawFromDiscardPileAndAddToBook,
	ActionDrawFromDiscardPileAndStartBook,
	ActionDiscardCard,
	ActionLayDownInitialBooks,
	ActionDrawFromDiscardPileAndLayDownInitialBooks,
	ActionStartBook,
	ActionAddCardsFromHandToBook,
}

// isSimpleKind reports whether the kind completes on its first drop, with
// no "done" gesture.
func isSimpleKind(k ActionType) bool {
	switch k {
	case ActionDrawFromDeck, ActionDrawFromDiscardPileAndAddToBook,
		ActionDiscardCard, ActionAddCardsFromHandToBook:
		return true
	}
	return false
}

// foldState is the state derived from a gesture-log prefix.
type foldState struct {
	phase BuilderPhase
	alive []ActionType

	remHand []Card // hand minus every dragged card

	staged      [][]Card // new-book staging slots, cards in drop order
	discardSlot int      // slot holding the discard card, or -1
	discardCard Card
	discardTaken bool

	pairs          int
	firstDragSrc   Site
	firstDragCards []Card
	firstDrop      Site

	dragging *gesture
}

// fold derives the current state from the whole gesture log.
func (b *ActionBuilder) fold() *foldState {
	s := &foldState{phase: PhaseIdle, discardSlot: -1, remHand: b.player.Hand()}
	for _, k := range allActionKinds {
		if b.kindOpenAtStart(k) {
			s.alive = append(s.alive, k)
		}
	}
	for i := range b.log {
		g := b.log[i]
		switch g.kind {
		case gestureDrag:
			s.stepDrag(b, &g)
		case gestureDrop:
			s.stepDrop(b, &g)
		case gestureDone:
			s.stepDone(b)
		}
	}
	return s
}

// kindOpenAtStart is each kind's entry predicate against the live game and
// player state, before any gesture.
func (b *ActionBuilder) kindOpenAtStart(k ActionType) bool {
	p, g := b.player, b.game
	top := g.DiscardTop()
	switch k {
	case ActionDrawFromDeck:
		return p.CanDrawFromDeck()
	case ActionDrawFromDiscardPileAndAddToBook:
		if !p.CanDrawFromDiscardPile() || !p.HasLaidDownThisRound() || top == EmptyCard {
			return false
		}
		for _, book := range p.books {
			if book.checkAdd(top) == nil {
				return true
			}
		}
		return false
	case ActionDrawFromDiscardPileAndStartBook:
		// Gated on the lay-down the same way plain startBook is, so this
		// can never coexist in Finished with the lay-down variants.
		return p.HasLaidDownThisRound() && p.CanDrawFromDiscardPile() &&
			top != EmptyCard && topCanJoinNewBook(p, top)
	case ActionDiscardCard:
		return p.CanEndTurn() && len(p.hand) > 0 && anyCardDiscardable(p)
	case ActionLayDownInitialBooks:
		return !p.HasLaidDownThisRound() && len(p.hand) >= 3
	case ActionDrawFromDiscardPileAndLayDownInitialBooks:
		return !p.HasLaidDownThisRound() && p.CanDrawFromDiscardPile() &&
			top != EmptyCard && topCanJoinNewBook(p, top) && len(p.hand) >= 2
	case ActionStartBook:
		return p.HasLaidDownThisRound() && len(p.hand) >= 3
	case ActionAddCardsFromHandToBook:
		return len(p.books) > 0 && len(p.hand) > 0
	}
	return false
}

// topCanJoinNewBook reports whether the discard top could ever be part of a
// freshly started book: wilds always can, naturals only when they can
// anchor a rank the player doesn't hold yet.
func topCanJoinNewBook(p *Player, top Card) bool {
	if top.IsWild() {
		return true
	}
	return top.CanStartBook() && p.Book(top.Rank()) == nil
}

// anyCardDiscardable reports whether at least one hand card may legally hit
// the discard pile right now. Only the very last card with the foot gone is
// ever blocked, and then only when the player cannot go out.
func anyCardDiscardable(p *Player) bool {
	if len(p.hand) == 1 && len(p.foot) == 0 {
		return p.hasGoOutBooks()
	}
	return true
}

// ---------------------------------------------------------------------------
// Gesture steps
// ---------------------------------------------------------------------------

func (s *foldState) stepDrag(b *ActionBuilder, g *gesture) {
	if s.phase != PhaseIdle && s.phase != PhaseComplexIdle {
		contractViolation("drag while %v", s.phase)
	}
	sources := s.dragSourceUnion(b)
	if !containsSite(sources, g.source) {
		contractViolation("drag source %v was not advertised", g.source)
	}

	switch g.source.Kind {
	case SiteDeck:
		g.cards = nil
	case SiteDiscardPile:
		top := b.game.DiscardTop()
		if len(g.cards) > 1 || (len(g.cards) == 1 && g.cards[0] != top) {
			contractViolation("discard pile drag must take the top card")
		}
		g.cards = []Card{top}
	case SiteHand:
		if len(g.cards) == 0 {
			contractViolation("hand drag carries no cards")
		}
		rem, ok := removeAll(s.remHand, g.cards)
		if !ok {
			contractViolation("dragged cards are not available in the hand")
		}
		s.remHand = rem
	default:
		contractViolation("cannot drag from %v", g.source)
	}

	s.dragging = g
	var alive []ActionType
	for _, k := range s.alive {
		if len(s.dropTargets(b, k)) > 0 {
			alive = append(alive, k)
		}
	}
	if len(alive) == 0 {
		contractViolation("drag from %v leaves no buildable action", g.source)
	}
	s.alive = alive
	if s.phase == PhaseIdle {
		s.phase = PhaseDragging
	} else {
		s.phase = PhaseComplexDragging
	}
}

func (s *foldState) stepDrop(b *ActionBuilder, g *gesture) {
	if s.phase != PhaseDragging && s.phase != PhaseComplexDragging {
		contractViolation("drop without a drag in flight")
	}
	targets := s.dropTargetUnion(b)
	if !containsSite(targets, g.dest) {
		contractViolation("drop destination %v was not advertised", g.dest)
	}

	var alive []ActionType
	for _, k := range s.alive {
		if containsSite(s.dropTargets(b, k), g.dest) {
			alive = append(alive, k)
		}
	}
	s.alive = alive

	drag := s.dragging
	if g.dest.Kind == SiteNewBook {
		if g.dest.Slot == len(s.staged) {
			s.staged = append(s.staged, nil)
		}
		s.staged[g.dest.Slot] = append(s.staged[g.dest.Slot], drag.cards...)
	}
	if drag.source.Kind == SiteDiscardPile {
		s.discardTaken = true
		s.discardCard = drag.cards[0]
		if g.dest.Kind == SiteNewBook {
			s.discardSlot = g.dest.Slot
		}
	}

	s.pairs++
	if s.pairs == 1 {
		s.firstDragSrc = drag.source
		s.firstDragCards = drag.cards
		s.firstDrop = g.dest
	}
	s.dragging = nil

	simple := true
	for _, k := range s.alive {
		if !isSimpleKind(k) {
			simple = false
		}
	}
	if simple {
		s.phase = PhaseFinished
	} else {
		s.phase = PhaseComplexIdle
	}
}

func (s *foldState) stepDone(b *ActionBuilder) {
	if s.phase != PhaseComplexIdle {
		contractViolation("done while %v", s.phase)
	}
	var alive []ActionType
	for _, k := range s.alive {
		if s.canFinish(b, k) {
			alive = append(alive, k)
		}
	}
	if len(alive) == 0 {
		contractViolation("done with no completable action")
	}
	s.alive = alive
	s.phase = PhaseFinished
}

// ---------------------------------------------------------------------------
// Per-kind narrowing
// ---------------------------------------------------------------------------

// dragSources returns the sites the kind would accept a drag from right now.
// The hand is only a source while undragged cards remain in it.
func (s *foldState) dragSources(b *ActionBuilder, k ActionType) []Site {
	p, g := b.player, b.game
	switch k {
	case ActionDrawFromDeck:
		return []Site{DeckSite()}
	case ActionDrawFromDiscardPileAndAddToBook:
		return []Site{DiscardPileSite()}
	case ActionDiscardCard, ActionAddCardsFromHandToBook,
		ActionStartBook, ActionLayDownInitialBooks:
		if len(s.remHand) == 0 {
			return nil
		}
		return []Site{HandSite()}
	case ActionDrawFromDiscardPileAndStartBook, ActionDrawFromDiscardPileAndLayDownInitialBooks:
		var sites []Site
		if len(s.remHand) > 0 {
			sites = append(sites, HandSite())
		}
		top := g.DiscardTop()
		if !s.discardTaken && p.CanDrawFromDiscardPile() && top != EmptyCard && topCanJoinNewBook(p, top) {
			sites = append(sites, DiscardPileSite())
		}
		return sites
	}
	return nil
}

// dropTargets returns the destinations the kind would accept for the
// in-flight drag. An empty result disqualifies the kind for this drag.
func (s *foldState) dropTargets(b *ActionBuilder, k ActionType) []Site {
	p := b.player
	drag := s.dragging
	switch k {
	case ActionDrawFromDeck:
		if drag.source.Kind != SiteDeck {
			return nil
		}
		return []Site{HandSite()}

	case ActionDrawFromDiscardPileAndAddToBook:
		if drag.source.Kind != SiteDiscardPile {
			return nil
		}
		var sites []Site
		for rank, book := range p.books {
			if book.checkAdd(drag.cards[0]) == nil {
				sites = append(sites, BookSite(rank))
			}
		}
		return sites

	case ActionDiscardCard:
		if drag.source.Kind != SiteHand || len(drag.cards) != 1 {
			return nil
		}
		if len(p.hand) == 1 && len(p.foot) == 0 && !p.hasGoOutBooks() {
			return nil
		}
		return []Site{DiscardPileSite()}

	case ActionAddCardsFromHandToBook:
		if drag.source.Kind != SiteHand {
			return nil
		}
		var sites []Site
		for rank, book := range p.books {
			if book.checkAddAll(drag.cards) == nil {
				sites = append(sites, BookSite(rank))
			}
		}
		return sites

	case ActionStartBook, ActionDrawFromDiscardPileAndStartBook:
		// A single staging slot.
		if !s.slotDropAllowed(b, k, drag) {
			return nil
		}
		if s.groupViable(p, 0, drag.cards) {
			return []Site{NewBookSite(0)}
		}
		return nil

	case ActionLayDownInitialBooks, ActionDrawFromDiscardPileAndLayDownInitialBooks:
		if !s.slotDropAllowed(b, k, drag) {
			return nil
		}
		var sites []Site
		for slot := range s.staged {
			if s.groupViable(p, slot, drag.cards) {
				sites = append(sites, NewBookSite(slot))
			}
		}
		// A fresh slot, if the dragged cards can seed a group of their own.
		fresh := len(s.staged)
		if s.groupViable(p, fresh, drag.cards) {
			sites = append(sites, NewBookSite(fresh))
		}
		return sites
	}
	return nil
}

// slotDropAllowed holds the gesture-shape constraints shared by the
// book-forming kinds: hand or discard sourced drags only, at most one
// discard drag, and the single-slot kinds refuse a second slot.
func (s *foldState) slotDropAllowed(b *ActionBuilder, k ActionType, drag *gesture) bool {
	switch drag.source.Kind {
	case SiteHand:
	case SiteDiscardPile:
		switch k {
		case ActionStartBook, ActionLayDownInitialBooks:
			// The hand-only sibling dies on a discard drag; its discard
			// twin stays alive and materialization picks between them.
			return false
		}
		if !b.player.CanDrawFromDiscardPile() {
			return false
		}
	default:
		return false
	}
	switch k {
	case ActionStartBook, ActionDrawFromDiscardPileAndStartBook:
		return len(s.staged) <= 1
	}
	return true
}

// groupViable reports whether the slot's group, extended by cards, can
// still become a legal new book: consistent anchorable naturals, a rank the
// player doesn't hold, and no collision with another staged group's rank.
func (s *foldState) groupViable(p *Player, slot int, cards []Card) bool {
	var rank uint8
	haveRank := false
	check := func(group []Card) bool {
		for _, c := range group {
			if c.IsWild() {
				continue
			}
			if !c.CanStartBook() {
				return false
			}
			if haveRank && c.Rank() != rank {
				return false
			}
			rank, haveRank = c.Rank(), true
		}
		return true
	}
	if slot < len(s.staged) && !check(s.staged[slot]) {
		return false
	}
	if !check(cards) {
		return false
	}
	if !haveRank {
		return true
	}
	if p.Book(rank) != nil {
		return false
	}
	for other, group := range s.staged {
		if other == slot {
			continue
		}
		if r, ok := anchorRank(group); ok && r == rank {
			return false
		}
	}
	return true
}

// canFinish reports whether "done" would leave this kind buildable.
func (s *foldState) canFinish(b *ActionBuilder, k ActionType) bool {
	p, g := b.player, b.game
	switch k {
	case ActionStartBook:
		return len(s.staged) == 1 && s.groupComplete(p, 0)
	case ActionDrawFromDiscardPileAndStartBook:
		return s.discardTaken && len(s.staged) == 1 && s.groupComplete(p, 0)
	case ActionLayDownInitialBooks, ActionDrawFromDiscardPileAndLayDownInitialBooks:
		if k == ActionDrawFromDiscardPileAndLayDownInitialBooks && !s.discardTaken {
			return false
		}
		if len(s.staged) == 0 {
			return false
		}
		total := 0
		for slot, group := range s.staged {
			if !s.groupComplete(p, slot) {
				return false
			}
			for _, c := range group {
				total += c.Value()
			}
		}
		return total >= g.round.PointsNeeded()
	}
	return false
}

// groupComplete reports whether the staged slot forms a legal book outright.
func (s *foldState) groupComplete(p *Player, slot int) bool {
	book, err := NewBook(s.staged[slot])
	if err != nil {
		return false
	}
	return p.Book(book.Rank()) == nil
}

// ---------------------------------------------------------------------------
// Unions and helpers
// ---------------------------------------------------------------------------

func (s *foldState) dragSourceUnion(b *ActionBuilder) []Site {
	var union []Site
	for _, k := range s.alive {
		for _, site := range s.dragSources(b, k) {
			if !containsSite(union, site) {
				union = append(union, site)
			}
		}
	}
	return union
}

func (s *foldState) dropTargetUnion(b *ActionBuilder) []Site {
	var union []Site
	for _, k := range s.alive {
		for _, site := range s.dropTargets(b, k) {
			if !containsSite(union, site) {
				union = append(union, site)
			}
		}
	}
	return union
}

func (s *foldState) anyCanFinish(b *ActionBuilder) bool {
	for _, k := range s.alive {
		if s.canFinish(b, k) {
			return true
		}
	}
	return false
}

func containsSite(sites []Site, site Site) bool {
	for _, s := range sites {
		if s == site {
			return true
		}
	}
	return false
}

// removeAll removes one copy of each card from the slice, reporting whether
// every card was present.
func removeAll(from []Card, cards []Card) ([]Card, bool) {
	rem := append([]Card(nil), from...)
	for _, c := range cards {
		found := -1
		for i, h := range rem {
			if h == c {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		rem = append(rem[:found], rem[found+1:]...)
	}
	return rem, true
}

func (ph BuilderPhase) String() string {
	switch ph {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseComplexIdle:
		return "complexIdle"
	case PhaseComplexDragging:
		return "complexDragging"
	case PhaseFinished:
		return "finished"
	}
	return "?"
}
