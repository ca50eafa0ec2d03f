package engine

import "errors"

// Every rule violation the engine can surface. All of these are recoverable
// by the caller: game state is left untouched when Apply returns one of them.
var (
	// Setup errors.
	ErrTooFewPlayers  = errors.New("too few players")
	ErrTooManyPlayers = errors.New("too many players")

	// Book formation errors.
	ErrNotEnoughCardsToStartBook      = errors.New("not enough cards to start a book")
	ErrCannotStartBookWithGivenCards  = errors.New("cannot start a book with the given cards")
	ErrCardDoesntMatchBookRank        = errors.New("card doesn't match the book's rank")
	ErrTooManyWildsInBookToAddAnother = errors.New("too many wilds in the book to add another")
	ErrBookAlreadyExists              = errors.New("a book of that rank already exists")
	ErrPlayerDoesntHaveBook           = errors.New("player doesn't have a book of that rank")

	// Turn and draw errors.
	ErrCannotDrawFromTheDeck        = errors.New("cannot draw from the deck")
	ErrCannotDrawFromTheDiscardPile = errors.New("cannot draw from the discard pile")
	ErrCannotEndTurnYet             = errors.New("cannot end the turn yet")
	ErrNotYourTurn                  = errors.New("not your turn")
	ErrAlreadyLaidDownThisRound     = errors.New("already laid down this round")

	// Resource errors.
	ErrDeckIsEmpty        = errors.New("the deck is empty")
	ErrDiscardPileIsEmpty = errors.New("the discard pile is empty")
	ErrCardNotInHand      = errors.New("card is not in the player's hand")

	// Terminal and outcome errors.
	ErrCannotGoOut              = errors.New("cannot go out")
	ErrNotEnoughPointsToLayDown = errors.New("not enough points to lay down")
	ErrGameIsOver               = errors.New("the game is over")
	ErrUnknownPlayer            = errors.New("unknown player")
)

// ErrInvalidAction is returned when decoding an action whose discriminator is
// unrecognized or whose required fields are missing.
var ErrInvalidAction = errors.New("invalid action")
