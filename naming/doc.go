// Package naming provides deterministic topic and identifier derivation
// for MQTT services that expose Home Assistant auto-discovery.
//
// This package manages:
//   - Slug derivation (alphanumeric-only identifier fragments)
//   - Unique IDs for service- and device-scoped entities
//   - Client IDs with a random suffix for broker session uniqueness
//   - Topic builders for status, discovery, state, availability,
//     attributes and command topics
//
// # Topic Hierarchy
//
// All topics are rooted at the service slug, except discovery topics
// (rooted at "homeassistant" per the Home Assistant discovery contract)
// and device-scoped attribute topics (also under "homeassistant").
//
//	{serviceSlug}/status/{part}                      service status
//	{serviceSlug}/{deviceSlug}/{category}/{parts}    device state/availability
//	{serviceSlug}/{deviceSlug}/cmd/{parts}/set       device command
//	homeassistant/{component}/{serviceSlug}_{item}/config   discovery
//
// The sentinel device id [DeviceService] selects the service scope, which
// omits the device segment entirely.
//
// # Usage
//
//	namer := naming.New("My Service")
//	namer.ServiceSlug()                       // "MyService"
//	namer.DeviceSlug("Lamp 1")                // "MyService_Lamp1"
//	namer.AvailabilityTopic(naming.DeviceService) // "MyService/availability"
//	topic, err := namer.DiscoveryTopic("switch", "light1")
//	// "homeassistant/switch/MyService_light1/config"
//
// All derivation is pure: no I/O, no mutable state, total over all input
// strings. The only failure mode is DiscoveryTopic with a blank argument,
// which must never silently build a malformed discovery path.
package naming
