// Package model defines the domain types shared across the flipper.
//
// Types:
//   - Signal: accepted directional token (buy, sell, or none)
//   - Direction: requested exposure (long, short)
//   - Side, OrderType, WorkingType: exchange order vocabulary
//   - OrderIntent: one order to place, built and consumed within a transition
package model
