// Package poller implements the Position Poller component.
//
// The Position Poller:
//   - Polls the exchange for the net position on the tracked symbol
//   - Exports it as the flipper_position_amount gauge
//   - Logs when the position changes outside a transition, e.g. when the
//     stop or take-profit fires
//
// It only reads. Transitions never consult it; they always re-fetch.
package poller
