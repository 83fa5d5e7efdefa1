// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a live view of an enhancement run:
//  1. [RunView] : Spinner, progress bar and a scrollback of recent outcomes
//  2. [ResultView] : Final tallies, or the saved-progress notice after an interrupt
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the EnhanceEngine, providing non-blocking status reporting while titles resolve.
package ui
