package conn

import (
	"errors"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/weirdtangent/hamqtt/config"
	"github.com/weirdtangent/hamqtt/naming"
)

// State is the connection lifecycle state.
type State int

// Lifecycle states. StateStopped is terminal.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnectPending
	StateStopped
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnectPending:
		return "reconnect_pending"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Scheduler is the thread-safe task-submission primitive the manager
// uses to marshal network-goroutine callbacks onto its owning goroutine.
// bridge.Loop satisfies it.
type Scheduler interface {
	Submit(task func())
}

// Logger interface for structured logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Hooks are invoked, in field order, after every successful connect.
// Nil hooks are skipped; hook errors are logged and do not abort the
// remaining hooks or the subscriptions that follow them.
type Hooks struct {
	PublishDiscovery    func() error
	PublishAvailability func() error
	PublishState        func() error
}

// SubscriptionSource supplies the topics to subscribe to after each
// successful connect.
type SubscriptionSource interface {
	SubscriptionTopics() []string
}

// MessageHandler receives inbound messages on the scheduler goroutine.
type MessageHandler func(topic string, payload []byte)

// mqttClient is the slice of pahomqtt.Client the manager drives.
// Narrowed to an interface so tests can substitute a fake.
type mqttClient interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
}

// Manager owns the broker connection handle and its lifecycle.
//
// All fields below the factory are owned by the scheduler goroutine;
// Start, Stop and Publish must only be called from it. The connection
// handle is non-nil exactly while the state is StateConnected.
type Manager struct {
	cfg   config.MQTTConfig
	namer *naming.Namer
	sched Scheduler
	log   Logger
	hooks Hooks
	subs  SubscriptionSource

	onMessage      MessageHandler
	graceWindow    time.Duration
	connectTimeout time.Duration
	now            func() time.Time
	exit           func(code int)
	newClient      func(*pahomqtt.ClientOptions) mqttClient

	// Owned by the scheduler goroutine.
	state       State
	running     bool
	client      mqttClient
	pending     mqttClient
	clientID    string
	connectedAt time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithGraceWindow overrides the reconnect grace window from config.
func WithGraceWindow(d time.Duration) Option {
	return func(m *Manager) { m.graceWindow = d }
}

// WithConnectTimeout overrides the connect-acknowledgment timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Manager) { m.connectTimeout = d }
}

// WithMessageHandler sets the handler for inbound messages. It is
// invoked on the scheduler goroutine.
func WithMessageHandler(handler MessageHandler) Option {
	return func(m *Manager) { m.onMessage = handler }
}

// WithNow substitutes the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithExitFunc substitutes the process-termination escalation used when
// a reconnect-path connect call fails fatally. Defaults to os.Exit.
func WithExitFunc(exit func(code int)) Option {
	return func(m *Manager) { m.exit = exit }
}

// NewManager creates a connection manager.
//
// Every collaborator is injected explicitly: nothing is reached through
// globals. The manager does not connect until Start is called.
//
// Parameters:
//   - cfg: Broker connection settings, immutable per attempt
//   - namer: Topic derivation for the will and client ID
//   - sched: Scheduler that owns all manager state transitions
//   - log: Structured logger
//   - hooks: Post-connect publications, in fixed order
//   - subs: Topics to subscribe to after each connect (may be nil)
func NewManager(cfg config.MQTTConfig, namer *naming.Namer, sched Scheduler, log Logger,
	hooks Hooks, subs SubscriptionSource, opts ...Option,
) *Manager {
	m := &Manager{
		cfg:            cfg,
		namer:          namer,
		sched:          sched,
		log:            log,
		hooks:          hooks,
		subs:           subs,
		graceWindow:    cfg.GraceWindow(),
		connectTimeout: defaultConnectTimeout,
		now:            time.Now,
		exit:           os.Exit,
		newClient: func(o *pahomqtt.ClientOptions) mqttClient {
			return pahomqtt.NewClient(o)
		},
		state: StateDisconnected,
	}
	if m.graceWindow <= 0 {
		m.graceWindow = defaultGraceWindow
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start issues the initial connect.
//
// A connect-call failure before any broker acknowledgment is fatal: the
// manager stops and the error is returned for the caller to escalate to
// process termination. Initial-connect failures are never retried
// automatically. A CONNACK rejection is routed through the same policy
// as an unsolicited disconnect, which with no prior successful connect
// also stops the manager.
//
// Must be called on the scheduler goroutine.
func (m *Manager) Start() error {
	if m.running {
		return ErrAlreadyRunning
	}
	m.running = true
	m.connectedAt = time.Time{}

	if err := m.connect(); err != nil {
		if errors.Is(err, ErrBrokerRejected) {
			m.log.Error("broker rejected connection",
				"host", m.cfg.Broker.Host,
				"port", m.cfg.Broker.Port,
				"error", err,
			)
			m.decideReconnect()
			return err
		}
		m.log.Error("failed to connect to MQTT broker",
			"host", m.cfg.Broker.Host,
			"port", m.cfg.Broker.Port,
			"error", err,
		)
		m.running = false
		m.state = StateStopped
		return err
	}
	return nil
}

// Stop requests a clean shutdown from any state.
//
// Must be called on the scheduler goroutine.
func (m *Manager) Stop() {
	m.running = false
	if m.client != nil {
		m.client.Disconnect(disconnectQuiesce)
		m.client = nil
	}
	// A pending client may already hold a live broker session if Stop
	// raced the connect acknowledgment; release it cleanly too.
	if m.pending != nil {
		m.pending.Disconnect(disconnectQuiesce)
		m.pending = nil
	}
	m.state = StateStopped
	m.log.Info("mqtt connection manager stopped")
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Running reports whether the manager is marked running. The disconnect
// handler consults this flag before deciding to reconnect, making Stop
// the single designated cancellation checkpoint.
func (m *Manager) Running() bool {
	return m.running
}

// ClientID returns the client identifier used for the current (or most
// recent) connection attempt.
func (m *Manager) ClientID() string {
	return m.clientID
}

// connect performs one connection attempt: Disconnected/ReconnectPending
// → Connecting, then waits for the acknowledgment. The transition to
// Connected happens in handleConnect on the scheduler goroutine.
func (m *Manager) connect() error {
	m.state = StateConnecting
	m.clientID = m.namer.ClientID()

	opts := buildClientOptions(m.cfg, m.clientID)
	if err := configureTLS(opts, m.cfg.Broker); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	configureWill(opts, m.namer)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		m.sched.Submit(m.handleConnect)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		m.sched.Submit(func() { m.handleDisconnect(err) })
	})
	opts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		m.dispatchMessage(msg.Topic(), msg.Payload())
	})

	m.log.Info("connecting to MQTT broker",
		"host", m.cfg.Broker.Host,
		"port", m.cfg.Broker.Port,
		"client_id", m.clientID,
	)

	cli := m.newClient(opts)
	m.pending = cli

	token := cli.Connect()
	if !token.WaitTimeout(m.connectTimeout) {
		m.pending = nil
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, m.connectTimeout)
	}
	if err := token.Error(); err != nil {
		m.pending = nil
		if isBrokerRejection(err) {
			return fmt.Errorf("%w: %w", ErrBrokerRejected, err)
		}
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// handleConnect runs on the scheduler goroutine after a successful
// connect acknowledgment: Connecting → Connected.
//
// The post-connect order is fixed: discovery, availability, state, then
// subscriptions.
func (m *Manager) handleConnect() {
	if m.state != StateConnecting || m.pending == nil {
		// The acknowledgment lost a race with Stop or a connect timeout;
		// whatever session the leftover client holds must not outlive it.
		if m.pending != nil {
			m.pending.Disconnect(disconnectQuiesce)
			m.pending = nil
		}
		return
	}
	m.client = m.pending
	m.pending = nil
	m.state = StateConnected
	m.connectedAt = m.now()

	m.log.Info("connected to MQTT broker",
		"host", m.cfg.Broker.Host,
		"client_id", m.clientID,
	)

	m.runHook("discovery", m.hooks.PublishDiscovery)
	m.runHook("availability", m.hooks.PublishAvailability)
	m.runHook("state", m.hooks.PublishState)

	m.subscribeAll()
}

// handleDisconnect runs on the scheduler goroutine when an established
// connection is lost. The handle is cleared before the reconnect policy
// is applied.
func (m *Manager) handleDisconnect(err error) {
	if m.state != StateConnected {
		return
	}
	m.client = nil

	if err != nil {
		m.log.Error("mqtt connection lost", "error", err)
	} else {
		m.log.Info("closed MQTT connection")
	}

	m.decideReconnect()
}

// decideReconnect applies the bounded reconnect policy once the handle
// is gone. Exactly one fresh attempt is issued when the disconnect falls
// inside the grace window of the last successful connect and the
// manager is still running; otherwise the manager stops.
func (m *Manager) decideReconnect() {
	withinGrace := !m.connectedAt.IsZero() &&
		m.now().Sub(m.connectedAt) <= m.graceWindow

	if !m.running {
		m.state = StateStopped
		m.log.Info("mqtt disconnect while stopping, not reconnecting")
		return
	}
	if !withinGrace {
		m.running = false
		m.state = StateStopped
		m.log.Info("mqtt disconnect outside grace window, stopping")
		return
	}

	m.state = StateReconnectPending
	m.log.Info("reconnecting to MQTT broker", "host", m.cfg.Broker.Host)

	if err := m.connect(); err != nil {
		if errors.Is(err, ErrBrokerRejected) {
			m.log.Error("broker rejected reconnection", "error", err)
			m.decideReconnect()
			return
		}
		// A reconnect-path connect failure has no caller to return to;
		// escalate to process termination.
		m.log.Error("failed to reconnect to MQTT broker",
			"host", m.cfg.Broker.Host,
			"port", m.cfg.Broker.Port,
			"error", err,
		)
		m.running = false
		m.state = StateStopped
		m.exit(1)
	}
}

// runHook invokes one post-connect hook, logging failures without
// aborting the sequence.
func (m *Manager) runHook(name string, hook func() error) {
	if hook == nil {
		return
	}
	if err := hook(); err != nil {
		m.log.Error("post-connect hook failed", "hook", name, "error", err)
	}
}

// subscribeAll registers every topic from the SubscriptionSource,
// logging per-topic results.
func (m *Manager) subscribeAll() {
	if m.subs == nil {
		return
	}
	topics := m.subs.SubscriptionTopics()
	if len(topics) == 0 {
		return
	}

	m.log.Info("subscribing to topics on MQTT", "count", len(topics))
	for _, topic := range topics {
		token := m.client.Subscribe(topic, byte(m.cfg.DefaultQoS), func(_ pahomqtt.Client, msg pahomqtt.Message) {
			m.dispatchMessage(msg.Topic(), msg.Payload())
		})
		if !token.WaitTimeout(defaultPublishTimeout) {
			m.log.Error("mqtt subscribe timed out", "topic", topic)
			continue
		}
		if err := token.Error(); err != nil {
			m.log.Error("mqtt subscribe failed", "topic", topic, "error", err)
			continue
		}
		m.log.Debug("mqtt subscribed", "topic", topic)
	}
}

// dispatchMessage marshals an inbound message from the network
// goroutine onto the scheduler.
func (m *Manager) dispatchMessage(topic string, payload []byte) {
	if m.onMessage == nil {
		return
	}
	m.sched.Submit(func() {
		m.onMessage(topic, payload)
	})
}
