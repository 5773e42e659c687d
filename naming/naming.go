package naming

import (
	"strings"

	"github.com/google/uuid"
)

// clientIDSuffixLen is the number of random characters appended to the
// service slug when deriving a client ID.
const clientIDSuffixLen = 8

// Namer derives slugs, unique IDs and topic strings for one service.
//
// A Namer is immutable after construction and all methods are pure
// functions of the receiver and their arguments, so it is safe for
// concurrent use from multiple goroutines.
type Namer struct {
	service     string
	serviceSlug string
}

// New creates a Namer for the given service name.
//
// The service slug is derived once here and reused by every builder.
// An empty or fully non-alphanumeric name yields an empty slug; callers
// should validate the service name before constructing a Namer.
func New(service string) *Namer {
	return &Namer{
		service:     service,
		serviceSlug: Slug(service),
	}
}

// Slug reduces a string to its alphanumeric characters only.
//
// Every rune outside [A-Za-z0-9] is stripped. The derivation is total
// (never fails) and idempotent: Slug(Slug(s)) == Slug(s).
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Service returns the raw service name the Namer was constructed with.
func (n *Namer) Service() string {
	return n.service
}

// ServiceSlug returns the derived service slug.
func (n *Namer) ServiceSlug() string {
	return n.serviceSlug
}

// ClientID returns a broker client identifier of the form
// "{serviceSlug}-{8 random lowercase alphanumeric characters}".
//
// The suffix makes concurrent sessions and rapid reconnects unlikely to
// collide on the broker. It is not cryptographically unique; the
// collision probability is acceptable for reconnect scenarios.
func (n *Namer) ClientID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:clientIDSuffixLen]
	return n.serviceSlug + "-" + suffix
}

// ServiceUniqueID returns a unique ID for a service-scoped entity:
// "{serviceSlug}_{entitySlug}".
func (n *Namer) ServiceUniqueID(entity string) string {
	return n.serviceSlug + "_" + Slug(entity)
}

// DeviceUniqueID returns a unique ID for a device-scoped entity:
// "{deviceSlug}_{entitySlug}".
func (n *Namer) DeviceUniqueID(deviceID, entity string) string {
	return n.DeviceSlug(deviceID) + "_" + Slug(entity)
}

// DeviceSlug returns the slug identifying a device within this service.
//
// It joins the non-empty of [serviceSlug, Slug(deviceID)] with "_", so an
// empty device id degenerates to the service slug alone with no trailing
// separator.
func (n *Namer) DeviceSlug(deviceID string) string {
	return joinNonEmpty("_", n.serviceSlug, Slug(deviceID))
}

// joinNonEmpty joins the non-empty segments with sep.
func joinNonEmpty(sep string, segments ...string) string {
	parts := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}
