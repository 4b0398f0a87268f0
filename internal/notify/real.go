package notify

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// MQTTPublisher публикует сводки в брокер MQTT
type MQTTPublisher struct {
	client paho.Client
	topic  string
	qos    byte
}

// NewMQTTPublisher подключается к брокеру
func NewMQTTPublisher(broker, clientID, topic string, qos byte) (*MQTTPublisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout: %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &MQTTPublisher{
		client: client,
		topic:  topic,
		qos:    qos,
	}, nil
}

func (p *MQTTPublisher) PublishSummary(summary models.RecordingSummary) error {
	payload, err := FormatPayload(summary)
	if err != nil {
		return fmt.Errorf("failed to format payload: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}
	return nil
}

// IsConnected сообщает состояние соединения с брокером
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
