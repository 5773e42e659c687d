// Package bridge hands events from the MQTT library's network goroutine
// to a single cooperative task loop.
//
// The MQTT client library delivers connection, message and subscription
// events on its own goroutines. Business logic, topic derivation and all
// connection state transitions run on exactly one consumer goroutine so
// they need no further locking. The Loop is the only point where those
// two worlds touch.
//
// # Guarantees
//
//   - Submit is safe to call concurrently from any goroutine and never
//     blocks the caller, regardless of how busy the consumer is.
//   - Tasks run in submission order (single FIFO queue, one consumer).
//   - After Close, already-queued tasks are drained before Run returns;
//     further Submit calls are silently dropped.
//
// # Usage
//
//	loop := bridge.NewLoop()
//	go loop.Run(ctx)
//
//	// From a paho callback on the network goroutine:
//	loop.Submit(func() { manager.HandleDisconnect(err) })
package bridge
