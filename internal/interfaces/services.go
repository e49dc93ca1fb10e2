// internal/interfaces/services.go
package interfaces

import (
	"context"
	"mower-core/internal/models"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Battery 배터리 드라이버
type Battery interface {
	Voltage() float64
	Level() string
	IsCharging() bool
	IsFullyCharged() bool
	LastFullyChargeTime() int64
	LastChargeDuration() int64
}

// Cutter 커터 모터 드라이버
type Cutter interface {
	Load() int
	IsCutting() bool
	Start()
	Stop(immediate bool)
}

// WheelController 바퀴 구동 드라이버
type WheelController interface {
	Status() models.WheelStatus
	Forward(turnRate, speed int, smooth bool)
	Backward(turnRate, speed int, smooth bool)
	Stop(immediate bool)
}

// Radio Wi-Fi 라디오
type Radio interface {
	RSSI() (int, error)
}

// Clock 단조 증가 가동 시간 (초)
type Clock interface {
	Uptime() uint32
}

// Orientation IMU 자세 추정기의 조회 인터페이스
type Orientation interface {
	Orientation() models.Orientation
	IsAvailable() bool
	IsFlipped() bool
}

// ModeReporter 현재 운영 모드 이름 제공자
type ModeReporter interface {
	ModeName() string
}

// Resources 모드 동작이 사용하는 하드웨어 묶음
type Resources struct {
	Battery     Battery
	Cutter      Cutter
	Wheels      WheelController
	Orientation Orientation
}

// CacheService Redis 캐시 관련 서비스 인터페이스
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	LPush(ctx context.Context, key string, values ...interface{}) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// MessagePublisher MQTT 메시지 발행 인터페이스
type MessagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) error
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) error
	IsConnected() bool
	Disconnect(quiesce uint)
}
