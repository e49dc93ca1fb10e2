package mqtt

import (
	"encoding/json"
	"mower-core/internal/common/constants"
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
	"mower-core/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Poster 제어 루프에 작업을 넘기는 인터페이스
type Poster interface {
	Post(fn func()) bool
}

// ModeSetter 사용자 모드 변경 인터페이스
type ModeSetter interface {
	SetUserChangeableState(name string) bool
}

// CommandHandler 명령 토픽의 {"state":"..."} 메시지를 처리한다.
// paho 콜백 고루틴에서 호출되므로 상태 변경은 제어 루프로 넘긴다.
type CommandHandler struct {
	loop  Poster
	modes ModeSetter
}

func NewCommandHandler(loop Poster, modes ModeSetter) *CommandHandler {
	return &CommandHandler{loop: loop, modes: modes}
}

// Subscribe 명령 토픽 구독
func (h *CommandHandler) Subscribe(client interfaces.MessagePublisher, prefix string) error {
	return client.Subscribe(constants.CommandTopic(prefix), 1, h.HandleMessage)
}

func (h *CommandHandler) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	h.Handle(msg.Topic(), msg.Payload())
}

// Handle 페이로드를 해석해 모드 변경을 예약한다. 예약했으면 true.
func (h *CommandHandler) Handle(topic string, payload []byte) bool {
	var cmd models.StateCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		utils.Logger.Infof("Ignoring malformed command on %s: %v", topic, err)
		return false
	}
	if cmd.State == nil {
		utils.Logger.Infof("Ignoring command on %s without state", topic)
		return false
	}

	name := *cmd.State
	queued := h.loop.Post(func() {
		if !h.modes.SetUserChangeableState(name) {
			utils.Logger.Infof("Unknown state requested over MQTT: %s", name)
		}
	})
	if !queued {
		utils.Logger.Warnf("Control loop stopped, dropped MQTT state command %s", name)
	}
	return queued
}
