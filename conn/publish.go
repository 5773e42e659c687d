package conn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// payloadPreviewLen bounds how much payload appears in failure log lines.
const payloadPreviewLen = 120

// slashRun is the separator run that marks a payload as a probable
// discovery document headed for the wrong topic.
const slashRun = "//////"

// publishOptions carries per-call QoS/retain overrides. Unset fields
// fall back to the configured defaults.
type publishOptions struct {
	qos    *byte
	retain *bool
}

// PublishOption customises a single Publish call.
type PublishOption func(*publishOptions)

// WithQoS sets the QoS level for this publish.
func WithQoS(qos byte) PublishOption {
	return func(o *publishOptions) { o.qos = &qos }
}

// WithRetain sets the retain flag for this publish.
func WithRetain(retain bool) PublishOption {
	return func(o *publishOptions) { o.retain = &retain }
}

// Publish sends a message to the given topic using the manager's owned
// connection handle.
//
// Validation happens before any network effect:
//   - ErrInvalidTopic for an empty topic, regardless of connection state
//   - ErrNotConnected when no handle is owned
//   - ErrSuspectPayload for a mapping payload carrying a "component" key
//     or a value with a long run of path separators (the shape of a
//     discovery document that missed its topic)
//
// A nil payload is encoded as the literal string "null"; maps and
// structs are JSON-encoded; strings, byte slices, booleans and numbers
// pass through as their obvious encodings.
//
// Library-level publish failures are non-fatal: they are logged with the
// topic and a truncated payload preview, and Publish returns nil.
//
// Must be called on the scheduler goroutine.
func (m *Manager) Publish(topic string, payload any, opts ...PublishOption) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if m.client == nil {
		return ErrNotConnected
	}
	if err := vetPayload(payload); err != nil {
		m.log.Warn("refusing to publish suspect payload", "topic", topic, "error", err)
		return err
	}

	options := publishOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	qos := byte(m.cfg.DefaultQoS)
	if options.qos != nil {
		qos = *options.qos
	}
	retain := m.cfg.DefaultRetain
	if options.retain != nil {
		retain = *options.retain
	}

	data, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for %s: %w", topic, err)
	}

	token := m.client.Publish(topic, qos, retain, data)
	if !token.WaitTimeout(defaultPublishTimeout) {
		m.log.Warn("mqtt publish failed",
			"topic", topic,
			"payload", preview(data),
			"error", fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout),
		)
		return nil
	}
	if perr := token.Error(); perr != nil {
		m.log.Warn("mqtt publish failed",
			"topic", topic,
			"payload", preview(data),
			"error", fmt.Errorf("%w: %w", ErrPublishFailed, perr),
		)
		return nil
	}
	return nil
}

// vetPayload rejects mapping payloads that look like discovery documents
// headed for a non-discovery topic. Publishing one would make the
// automation platform misconfigure an entity, so the check runs before
// any network call.
func vetPayload(payload any) error {
	switch p := payload.(type) {
	case map[string]any:
		if _, ok := p["component"]; ok {
			return fmt.Errorf("%w: payload contains %q key", ErrSuspectPayload, "component")
		}
		for key, value := range p {
			if s, ok := value.(string); ok && strings.Contains(s, slashRun) {
				return fmt.Errorf("%w: value for %q contains a run of path separators", ErrSuspectPayload, key)
			}
		}
	case map[string]string:
		if _, ok := p["component"]; ok {
			return fmt.Errorf("%w: payload contains %q key", ErrSuspectPayload, "component")
		}
		for key, value := range p {
			if strings.Contains(value, slashRun) {
				return fmt.Errorf("%w: value for %q contains a run of path separators", ErrSuspectPayload, key)
			}
		}
	}
	return nil
}

// encodePayload converts a payload to its wire bytes. Absent payloads
// become the literal string "null" so availability-style topics always
// carry something parseable.
func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return []byte("null"), nil
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	case bool:
		return []byte(strconv.FormatBool(p)), nil
	case int:
		return []byte(strconv.Itoa(p)), nil
	case int64:
		return []byte(strconv.FormatInt(p, 10)), nil
	case float64:
		return []byte(strconv.FormatFloat(p, 'g', -1, 64)), nil
	default:
		return json.Marshal(p)
	}
}

// preview truncates payload bytes for log lines.
func preview(data []byte) string {
	if len(data) <= payloadPreviewLen {
		return string(data)
	}
	return string(data[:payloadPreviewLen]) + "..."
}
