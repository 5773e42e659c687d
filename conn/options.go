package conn

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"

	"github.com/weirdtangent/hamqtt/config"
	"github.com/weirdtangent/hamqtt/naming"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connect
	// acknowledgment before treating the attempt as failed.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish and
	// subscribe acknowledgments.
	defaultPublishTimeout = 5 * time.Second

	// defaultGraceWindow bounds how long after the last successful
	// connect an automatic reconnect is still attempted.
	defaultGraceWindow = 10 * time.Second

	// disconnectQuiesce is the time to wait for pending operations on
	// disconnect, in milliseconds.
	disconnectQuiesce = 1000

	// willPayload is published by the broker at the service availability
	// topic if the client disconnects without a clean shutdown.
	willPayload = "offline"

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from the connection config.
//
// Auto-reconnect and connect-retry are deliberately disabled: the manager
// owns the reconnect policy, bounded by the grace window, and the paho
// built-ins would race it.
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" || cfg.Auth.Password != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Start fresh on every connect; no persistent session on the broker.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(cfg.KeepAliveDuration())

	return opts
}

// configureTLS loads TLS materials from the configured paths.
//
// The CA certificate, client certificate and key are all optional; when
// no paths are given the system roots are used.
func configureTLS(opts *pahomqtt.ClientOptions, broker config.BrokerConfig) error {
	if !broker.TLS {
		return nil
	}

	tlsConfig := &tls.Config{
		MinVersion: tlsMinVersion,
	}

	if broker.TLSCACert != "" {
		pem, err := os.ReadFile(broker.TLSCACert)
		if err != nil {
			return fmt.Errorf("reading CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return fmt.Errorf("parsing CA certificate %s: no certificates found", broker.TLSCACert)
		}
		tlsConfig.RootCAs = pool
	}

	if broker.TLSCert != "" && broker.TLSKey != "" {
		cert, err := tls.LoadX509KeyPair(broker.TLSCert, broker.TLSKey)
		if err != nil {
			return fmt.Errorf("loading client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	opts.SetTLSConfig(tlsConfig)
	return nil
}

// configureWill registers the Last Will and Testament at the service
// availability topic.
//
// The broker publishes it if the client disconnects unexpectedly, so
// subscribers see "offline" without the service having to say goodbye.
//
// QoS: 1 (guaranteed delivery)
// Retained: true (new subscribers see last status)
func configureWill(opts *pahomqtt.ClientOptions, namer *naming.Namer) {
	opts.SetWill(namer.AvailabilityTopic(naming.DeviceService), willPayload, 1, true)
}

// brokerRejections are the CONNACK refusal reasons paho surfaces as
// connect token errors. Network-level failures (ErrNetworkError and
// friends) are deliberately not in this list; those are fatal connect
// failures, not broker decisions.
var brokerRejections = []error{
	packets.ConnErrors[packets.ErrRefusedBadProtocolVersion],
	packets.ConnErrors[packets.ErrRefusedIDRejected],
	packets.ConnErrors[packets.ErrRefusedServerUnavailable],
	packets.ConnErrors[packets.ErrRefusedBadUsernameOrPassword],
	packets.ConnErrors[packets.ErrRefusedNotAuthorised],
}

// isBrokerRejection reports whether err is a non-zero CONNACK reason.
func isBrokerRejection(err error) bool {
	for _, rejection := range brokerRejections {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}
