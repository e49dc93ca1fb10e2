package mqtt

import (
	"fmt"
	"mower-core/internal/common/constants"
	"mower-core/internal/config"
	"mower-core/internal/utils"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Client MQTT 클라이언트 구현체 (interfaces.MessagePublisher)
type Client struct {
	client mqtt.Client
	prefix string
}

// NewClient 브로커 연결. 연결 토픽에 DISCONNECTED 유언 메시지를 등록하고
// 연결될 때마다 CONNECTED 를 retained 로 발행한다.
func NewClient(cfg *config.Config) (*Client, error) {
	connectionTopic := constants.ConnectionTopic(cfg.MQTTTopicPrefix)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetKeepAlive(15 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetWill(connectionTopic, constants.ConnectionStateDisconnected, 2, true)

	// 연결 상태 콜백
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		utils.Logger.Info("Connected to the MQTT broker")
		token := c.Publish(connectionTopic, 1, true, constants.ConnectionStateConnected)
		go func() {
			if token.WaitTimeout(publishTimeout) && token.Error() != nil {
				utils.Logger.Errorf("Failed to publish connection state: %v", token.Error())
			}
		}()
	})

	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		utils.Logger.Errorf("Disconnected from the MQTT broker, reconnecting: %v", err)
	})

	client := mqtt.NewClient(opts)

	// 연결 시도
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Client{client: client, prefix: cfg.MQTTTopicPrefix}, nil
}

// Publish 메시지 발행
func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message: %w", token.Error())
	}

	utils.Logger.Debugf("MQTT published: %s", topic)
	return nil
}

// Subscribe 토픽 구독
func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Subscribe(topic, qos, callback)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	utils.Logger.Infof("Subscribed to topic: %s", topic)
	return nil
}

// Disconnect 연결 해제. 정상 종료 시에는 유언이 발송되지 않으므로
// DISCONNECTED 를 직접 발행한다.
func (c *Client) Disconnect(quiesce uint) {
	if !c.client.IsConnected() {
		return
	}
	if err := c.Publish(constants.ConnectionTopic(c.prefix), 1, true, constants.ConnectionStateDisconnected); err != nil {
		utils.Logger.Warnf("Failed to publish disconnect state: %v", err)
	}
	c.client.Disconnect(quiesce)
	utils.Logger.Info("MQTT client disconnected")
}

// IsConnected 연결 상태 확인
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
