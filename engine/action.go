package engine

import (
	"encoding/json"
	"fmt"
)

// ActionType discriminates the closed set of move variants.
type ActionType string

const (
	ActionDrawFromDeck                              ActionType = "drawFromDeck"
	ActionDrawFromDiscardPileAndAddToBook           ActionType = "drawFromDiscardPileAndAddToBook"
	ActionDrawFromDiscardPileAndStartBook           ActionType = "drawFromDiscardPileAndStartBook"
	ActionDiscardCard                               ActionType = "discardCard"
	ActionLayDownInitialBooks                       ActionType = "layDownInitialBooks"
	ActionDrawFromDiscardPileAndLayDownInitialBooks ActionType = "drawFromDiscardPileAndLayDownInitialBooks"
	ActionStartBook                                 ActionType = "startBook"
	ActionAddCardsFromHandToBook                    ActionType = "addCardsFromHandToBook"
)

// Action is one replayable move: the discriminator, the acting player, and
// whichever payload fields the variant needs. It is the unit of replay and
// of network transmission.
type Action struct {
	Type   ActionType `json:"type"`
	Player string     `json:"player"`

	Card        *Card    `json:"card,omitempty"`
	Cards       []Card   `json:"cards,omitempty"`
	Books       [][]Card `json:"books,omitempty"`
	PartialBook []Card   `json:"partialBook,omitempty"`
	Rank        string   `json:"rank,omitempty"`
}

// Encode serializes the action to its wire form.
func (a Action) Encode() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

// DecodeAction parses and validates one wire-encoded action.
func DecodeAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}

// Validate checks that the discriminator is known and that the variant's
// required fields are present.
func (a Action) Validate() error {
	if a.Player == "" {
		return fmt.Errorf("%w: missing player", ErrInvalidAction)
	}
	switch a.Type {
	case ActionDrawFromDeck:
		return nil
	case ActionDrawFromDiscardPileAndAddToBook:
		return a.requireRank()
	case ActionDrawFromDiscardPileAndStartBook:
		return a.requireCards()
	case ActionDiscardCard:
		if a.Card == nil {
			return fmt.Errorf("%w: missing card", ErrInvalidAction)
		}
		return nil
	case ActionLayDownInitialBooks:
		return a.requireBooks()
	case ActionDrawFromDiscardPileAndLayDownInitialBooks:
		if len(a.PartialBook) == 0 {
			return fmt.Errorf("%w: missing partialBook", ErrInvalidAction)
		}
		return nil
	case ActionStartBook:
		return a.requireCards()
	case ActionAddCardsFromHandToBook:
		if err := a.requireCards(); err != nil {
			return err
		}
		return a.requireRank()
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
}

func (a Action) requireCards() error {
	if len(a.Cards) == 0 {
		return fmt.Errorf("%w: missing cards", ErrInvalidAction)
	}
	return nil
}

func (a Action) requireBooks() error {
	if len(a.Books) == 0 {
		return fmt.Errorf("%w: missing books", ErrInvalidAction)
	}
	return nil
}

func (a Action) requireRank() error {
	if _, ok := ParseRank(a.Rank); !ok {
		return fmt.Errorf("%w: missing or unknown rank %q", ErrInvalidAction, a.Rank)
	}
	return nil
}
