// Package mqtt provides MQTT client connectivity for the panel bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// cuelight uses MQTT as the show-control bus connecting trigger panels,
// the cue engine and operator tooling. The broker decouples the panel
// bridge from whichever components consume its events.
//
//	Trigger Panel Bridge ↔ MQTT Broker ↔ Cue Engine / Tooling
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(mqtt.Config{
//	    BrokerURL: "tcp://localhost:1883",
//	    ClientID:  "padbridge-01-mqtt",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to panel requests (topic helpers live in the launchpad
//	// package alongside the message types)
//	err = client.Subscribe("cuelight/request/launchpad/#", 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish an event
//	client.Publish("cuelight/event/launchpad/cue", payload, 1, false)
package mqtt
