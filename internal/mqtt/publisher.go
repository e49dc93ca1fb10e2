package mqtt

import (
	"encoding/json"
	"fmt"
	"mower-core/internal/common/constants"
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
)

// StatusPublisher 상태 스냅샷을 상태 토픽에 retained 로 발행하는 sink
type StatusPublisher struct {
	publisher interfaces.MessagePublisher
	topic     string
}

func NewStatusPublisher(publisher interfaces.MessagePublisher, prefix string) *StatusPublisher {
	return &StatusPublisher{
		publisher: publisher,
		topic:     constants.StatusTopic(prefix),
	}
}

func (p *StatusPublisher) Push(s models.Status) error {
	if !p.publisher.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	return p.publisher.Publish(p.topic, 1, true, payload)
}
