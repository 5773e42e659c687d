package conn

import "errors"

// Domain-specific errors for connection and publish operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidTopic is returned when publishing to an empty topic.
	ErrInvalidTopic = errors.New("conn: topic cannot be empty")

	// ErrNotConnected is returned when publishing without an owned
	// connection handle.
	ErrNotConnected = errors.New("conn: client not connected")

	// ErrSuspectPayload is returned when a payload looks like a discovery
	// document headed for a non-discovery topic (a "component" key, or a
	// long run of path separators in a value).
	ErrSuspectPayload = errors.New("conn: suspect payload rejected")

	// ErrConnectionFailed is returned when a connect call fails before
	// any broker acknowledgment. This is fatal: the manager does not
	// retry initial-connect failures.
	ErrConnectionFailed = errors.New("conn: connection failed")

	// ErrBrokerRejected is returned when the broker refuses the
	// connection with a non-zero CONNACK reason. Treated like an
	// unsolicited disconnect for reconnect purposes.
	ErrBrokerRejected = errors.New("conn: broker rejected connection")

	// ErrPublishFailed marks library-level publish failures. These are
	// logged and never propagated out of Publish.
	ErrPublishFailed = errors.New("conn: publish failed")

	// ErrAlreadyRunning is returned by Start on a running manager.
	ErrAlreadyRunning = errors.New("conn: manager already running")
)
