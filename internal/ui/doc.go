// Package ui implements an interactive terminal rendition of the guessing
// game using bubbletea's Elm architecture.
//
// The TUI walks through a multi-view workflow:
//  1. [DeviceView] : Pick a playback device
//  2. [PlaylistView] : Enter a playlist link
//  3. [RoundView] : Play snippets, search, and guess
//  4. [RevealView] : See the round outcome
//  5. [StatsView] : Session totals on exit
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Snippet playback runs as a command that starts playback, waits out the
// guess window, and pauses, so the update loop never blocks on the network.
package ui
