// Package conn owns the MQTT broker connection lifecycle for a hamqtt
// service.
//
// This package manages:
//   - Connect/disconnect/reconnect as an explicit state machine
//   - Last Will and Testament at the service availability topic
//   - Post-connect publication order (discovery, availability, state)
//   - Subscription registration from a SubscriptionSource
//   - Guarded publishing with payload validation and configured defaults
//
// # State Machine
//
//	Disconnected → Connecting → Connected → (ReconnectPending → Connecting | Stopped)
//
// Exactly one connection attempt is in flight at a time. An unsolicited
// disconnect within the grace window of the last successful connect
// triggers exactly one fresh attempt; outside the window the manager
// stops. A connect call that fails before any broker acknowledgment is
// fatal and is never retried automatically. A broker CONNACK rejection
// is treated like an unsolicited disconnect for reconnect purposes.
//
// # Concurrency
//
// The manager's state and connection handle are owned by a single
// cooperative scheduler goroutine (see the bridge package). Start, Stop
// and Publish must be called from that goroutine; the paho library's
// network-goroutine callbacks are marshalled onto it via the injected
// Scheduler. No locking is needed inside the manager because of this
// single-owner discipline.
//
// # Usage
//
//	loop := bridge.NewLoop()
//	mgr := conn.NewManager(cfg.MQTT, namer, loop, log, conn.Hooks{
//	    PublishDiscovery:    publishDiscovery,
//	    PublishAvailability: publishAvailability,
//	    PublishState:        publishState,
//	}, subscriptions)
//
//	loop.Submit(func() {
//	    if err := mgr.Start(); err != nil {
//	        // initial connect failure is fatal; terminate the process
//	    }
//	})
//	loop.Run(ctx)
package conn
