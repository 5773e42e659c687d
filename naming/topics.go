package naming

import (
	"fmt"
	"strings"
)

// Topic prefixes and fixed segments.
const (
	// DeviceService is the sentinel device id selecting the service scope.
	// Service-scope topics omit the device segment entirely.
	DeviceService = "service"

	// DiscoveryPrefix roots Home Assistant discovery topics.
	DiscoveryPrefix = "homeassistant"

	// Fixed category segments.
	categoryStatus       = "status"
	categoryAvailability = "availability"
	categoryAttributes   = "attributes"
	categoryCommand      = "cmd"

	// commandSuffix terminates every command topic.
	commandSuffix = "set"
)

// StatusTopic returns the service status topic for the given part.
//
// Example: MyService/status/uptime
func (n *Namer) StatusTopic(part string) string {
	return joinTopic(n.serviceSlug, categoryStatus, part)
}

// DeviceTopic returns a component-typed device topic.
//
// Device scope:  {serviceSlug}/{componentType}/{deviceSlug}/{parts...}
// Service scope: {serviceSlug}/{parts...}
//
// Example: MyService/switch/MyService_Lamp1/state
func (n *Namer) DeviceTopic(componentType, deviceID string, parts ...string) string {
	if deviceID == DeviceService {
		return joinTopic(append([]string{n.serviceSlug}, parts...)...)
	}
	segments := []string{n.serviceSlug, componentType, n.DeviceSlug(deviceID)}
	return joinTopic(append(segments, parts...)...)
}

// DiscoveryTopic returns the Home Assistant discovery config topic for an
// entity: homeassistant/{component}/{serviceSlug}_{item}/config.
//
// Returns ErrBlankDiscoveryPart if either argument is blank; a discovery
// path with a missing segment would be accepted by the broker but ignored
// (or misrouted) by the automation platform.
//
// Example: homeassistant/switch/Demo_light1/config
func (n *Namer) DiscoveryTopic(component, item string) (string, error) {
	if component == "" || item == "" {
		return "", fmt.Errorf("%w: component=%q item=%q", ErrBlankDiscoveryPart, component, item)
	}
	return joinTopic(DiscoveryPrefix, component, n.serviceSlug+"_"+item, "config"), nil
}

// StateTopic returns the state topic for a device (or the service, with
// the DeviceService sentinel) under the given category.
//
// Device scope:  {serviceSlug}/{deviceSlug}/{category}/{parts...}
// Service scope: {serviceSlug}/{category}/{parts...}
func (n *Namer) StateTopic(deviceID, category string, parts ...string) string {
	return n.categoryTopic(n.serviceSlug, deviceID, category, parts)
}

// AvailabilityTopic returns the availability topic for a device or the
// service. Payloads on this topic are "online"/"offline"; the service
// scope topic is also used for the broker last-will message.
func (n *Namer) AvailabilityTopic(deviceID string, parts ...string) string {
	return n.categoryTopic(n.serviceSlug, deviceID, categoryAvailability, parts)
}

// AttributesTopic returns the attributes topic for a device or the
// service. Device-scope attribute topics live under the homeassistant
// prefix, matching the deployed discovery contracts.
func (n *Namer) AttributesTopic(deviceID string, parts ...string) string {
	return n.categoryTopic(DiscoveryPrefix, deviceID, categoryAttributes, parts)
}

// CommandTopic returns the command topic for a device or the service.
// Command topics always end in a "set" segment.
//
// Device scope:  {serviceSlug}/{deviceSlug}/cmd/{parts...}/set
// Service scope: {serviceSlug}/service/cmd/set
func (n *Namer) CommandTopic(deviceID string, parts ...string) string {
	if deviceID == DeviceService {
		return joinTopic(n.serviceSlug, DeviceService, categoryCommand, commandSuffix)
	}
	segments := []string{n.serviceSlug, n.DeviceSlug(deviceID), categoryCommand}
	segments = append(segments, parts...)
	return joinTopic(append(segments, commandSuffix)...)
}

// categoryTopic builds the shared state/availability/attributes shape.
// devicePrefix replaces the service slug for device-scope topics only;
// service-scope topics are always rooted at the service slug.
func (n *Namer) categoryTopic(devicePrefix, deviceID, category string, parts []string) string {
	if deviceID == DeviceService {
		return joinTopic(append([]string{n.serviceSlug, category}, parts...)...)
	}
	segments := []string{devicePrefix, n.DeviceSlug(deviceID), category}
	return joinTopic(append(segments, parts...)...)
}

// joinTopic joins path segments with "/".
func joinTopic(segments ...string) string {
	return strings.Join(segments, "/")
}
