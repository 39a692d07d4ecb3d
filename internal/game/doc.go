// Package game runs one game of set-finding between a dealer and N players.
//
// The Dealer is the single coordinating loop. It deals cards from the deck
// into the shared grid, counts the round down, drains claims from the claim
// queue in arrival order, asks the oracle for a verdict, and reshuffles when
// the round expires or no set can be found. Each Player runs on its own
// goroutine and applies the actions queued through KeyPressed; an AIDriver
// can press keys for a player instead of a human.
//
// # Basic Usage
//
//	cfg := game.DefaultConfig()
//	cfg.Players = 4
//	g, err := game.NewGame(logger, cfg, nil, display, quartz.NewReal())
//	if err != nil {
//	    return err
//	}
//	res, err := g.Run(ctx)
//
// Cancelling ctx or calling Stop ends the game. Run always stops and joins
// every player and driver before returning.
//
// # Synchronization
//
// Agents only share the grid (one mutex) and the claim queue (a buffered
// channel). Placing the last token of a set queues the claim and marks the
// player as awaiting a verdict in one critical section. The dealer hands the
// verdict back on a per-player channel after raising the freeze flag and
// clearing the awaiting mark, so a player is never seen idle in between.
// Every blocking point also watches the context, which is how shutdown
// reaches all of them.
//
// # Deterministic Testing
//
// Pass a quartz mock clock and a fixed Config.Seed. The deck and each AI
// draw from separate streams derived from the seed.
package game
