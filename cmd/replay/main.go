// Command replay applies a recorded action log to a seeded game and prints
// the resulting state.
//
// It takes a single positional argument: the path to a JSON test-case file
// with the player names, one pre-ordered deck per round (consumed
// back-to-front as draws), and the ordered actions to apply. Malformed
// input is fatal. A mid-replay illegal action is reported to stderr and
// stops the replay, but the state reached so far is still printed to
// stdout as pretty-printed JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/boztalay/handandfoot/engine"
)

type testCase struct {
	Players []string                 `json:"players"`
	Decks   map[string][]engine.Card `json:"decks"`
	Actions []json.RawMessage        `json:"actions"`
}

func main() {
	log.SetOutput(os.Stderr)

	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <test-case.json>", os.Args[0])
	}

	tc, err := loadTestCase(os.Args[1])
	if err != nil {
		log.Fatalf("loading test case: %v", err)
	}

	decks := make(map[engine.Round][]engine.Card, len(engine.Rounds))
	for name, cards := range tc.Decks {
		round, ok := engine.ParseRound(name)
		if !ok {
			log.Fatalf("unknown round %q in decks", name)
		}
		decks[round] = cards
	}
	for _, round := range engine.Rounds {
		if _, ok := decks[round]; !ok {
			log.Fatalf("no deck given for round %q", round)
		}
	}

	game, err := engine.NewSeededGame(tc.Players, decks)
	if err != nil {
		log.Fatalf("constructing game: %v", err)
	}

	for i, raw := range tc.Actions {
		action, err := engine.DecodeAction(raw)
		if err != nil {
			log.Fatalf("action %d: %v", i, err)
		}
		if err := game.Apply(action); err != nil {
			log.WithFields(log.Fields{
				"index":  i,
				"type":   action.Type,
				"player": action.Player,
			}).Errorf("illegal action: %v", err)
			break
		}
	}

	out, err := game.Snapshot().MarshalPretty()
	if err != nil {
		log.Fatalf("encoding snapshot: %v", err)
	}
	fmt.Println(string(out))
}

func loadTestCase(path string) (*testCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tc testCase
	if err := json.Unmarshal(data, &tc); err != nil {
		return nil, err
	}
	if len(tc.Players) == 0 {
		return nil, fmt.Errorf("test case has no players")
	}
	return &tc, nil
}
