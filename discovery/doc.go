// Package discovery builds Home Assistant MQTT discovery document
// fragments.
//
// The package currently covers the shared "device" block that groups
// entities under one device in the Home Assistant UI. Entity documents
// embed the block under their "device" key and publish the result to a
// discovery config topic (see naming.DiscoveryTopic).
//
// Blocks are plain map[string]any values ready for JSON encoding; they
// never carry a "component" key, so they pass the publish-time payload
// guard when embedded correctly.
package discovery
