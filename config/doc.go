// Package config provides configuration loading for hamqtt services.
//
// Configuration is loaded from YAML, overridden by environment variables,
// and validated before use. A loaded Config is treated as immutable: the
// connection manager copies what it needs per connection attempt.
//
// # Configuration File
//
//	service:
//	  name: "My Service"
//
//	mqtt:
//	  broker:
//	    host: "mqtt.local"
//	    port: 8883
//	    tls: true
//	    tls_ca_cert: "/etc/ssl/ca.pem"
//	    tls_cert: "/etc/ssl/client.pem"
//	    tls_key: "/etc/ssl/client.key"
//	  auth:
//	    username: "svc"
//	    password: "secret"
//	  keepalive: 60
//	  default_qos: 1
//	  default_retain: false
//	  reconnect:
//	    grace_seconds: 10
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Environment Overrides
//
// Variables follow the pattern HAMQTT_SECTION_KEY and take precedence
// over the file. Credentials in particular should come from the
// environment rather than the file:
//
//	HAMQTT_SERVICE_NAME
//	HAMQTT_MQTT_HOST
//	HAMQTT_MQTT_PORT
//	HAMQTT_MQTT_USERNAME
//	HAMQTT_MQTT_PASSWORD
package config
