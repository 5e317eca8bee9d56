// Package transition flips the exposure on the tracked symbol.
//
// A transition walks a fixed sequence of states:
//
//	Idle -> Preparing -> Flattening -> Entering -> Protecting -> Done
//
// Any fatal error moves it to Failed and no later step runs. The engine never
// touches the persisted signal; the caller decides what to record based on
// the returned error.
//
// Preparing sets leverage and margin type, then cancels every open order.
// Flattening closes whatever position is open, in either direction.
// Entering sizes a market order from the available balance and the current
// price. Protecting places a stop and a take-profit that both close the whole
// position and trigger on the configured working price.
package transition
