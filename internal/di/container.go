// internal/di/container.go
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mower-core/internal/api"
	"mower-core/internal/config"
	"mower-core/internal/database"
	"mower-core/internal/hardware"
	"mower-core/internal/imu"
	"mower-core/internal/mqtt"
	"mower-core/internal/realtime"
	"mower-core/internal/redis"
	"mower-core/internal/scheduler"
	"mower-core/internal/state"
	"mower-core/internal/status"
	"mower-core/internal/utils"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	simStepInterval   = time.Second
	throttledQueueLen = 8
	shutdownTimeout   = 5 * time.Second
)

// Container 의존성 주입 컨테이너
type Container struct {
	Config *config.Config

	// Core
	Loop       *scheduler.Loop
	Clock      *utils.MonotonicClock
	LogStore   *utils.LogStore
	Rig        *hardware.Rig
	Estimator  *imu.Estimator
	Controller *state.Controller
	Aggregator *status.Aggregator

	// Sinks
	Hub       *realtime.Hub
	Throttled *status.FanOut
	Async     *status.AsyncSink

	// Integrations (설정된 경우에만)
	MQTT        *mqtt.Client
	Commands    *mqtt.CommandHandler
	RedisClient *goredis.Client
	StatusStore *redis.StatusStore
	SQLDB       *sql.DB
	Telemetry   *database.TelemetryRecorder

	// Surface
	Server *api.Server
}

// NewContainer 새로운 컨테이너 생성
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// 1. 로깅
	c.initLogging()

	// 2. 제어 루프와 하드웨어
	c.initCore()

	// 3. 외부 연동 (MQTT, Redis, Postgres)
	if err := c.initIntegrations(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init integrations: %w", err)
	}

	// 4. 상태 푸시 경로
	c.initStatus()

	// 5. REST / websocket
	c.initSurface()

	return c, nil
}

// initLogging 로그 레벨과 로그 저장소 설치
func (c *Container) initLogging() {
	if !utils.SetupLogger(c.Config.LogLevel) {
		utils.Logger.Warnf("Unknown log level %q, using info", c.Config.LogLevel)
	}
	c.LogStore = utils.NewLogStore(c.Config.Tuning.MaxLogMessages)
	c.LogStore.Install()
}

// initCore 제어 루프, 시뮬레이션 하드웨어, 자세 추정기, 상태 머신
func (c *Container) initCore() {
	t := c.Config.Tuning

	c.Loop = scheduler.NewLoop()
	c.Clock = utils.NewMonotonicClock()
	c.Rig = hardware.NewRig(c.Clock, t.BatteryLowVoltage, t.BatteryFullVoltage)

	c.Estimator = imu.NewEstimator(c.Rig.IMU, imu.Options{
		MedianSamples:  t.MedianSamples,
		DeclinationDeg: t.DeclinationDeg,
		TiltAngleMax:   t.TiltAngleMaxDeg,
		Interval:       t.SensorInterval(),
	})
	if err := c.Estimator.Start(c.Loop); err != nil {
		// 자세 정보 없이 계속 동작 (뒤집힘 감지 불가)
		utils.Logger.Warnf("Continuing without orientation: %v", err)
	}

	opts := state.DefaultOptions()
	opts.BatteryLowVoltage = t.BatteryLowVoltage
	c.Controller = state.NewController(state.Docked, c.Rig.Resources(c.Estimator), opts)
	c.Loop.Every("control", t.ControlInterval(), c.Controller.Tick)

	c.Rig.AttachMode(c.Controller)
	c.Rig.Start(c.Loop, simStepInterval)
}

// initIntegrations 설정된 외부 연동만 초기화
func (c *Container) initIntegrations() error {
	cfg := c.Config

	if cfg.DatabaseEnabled() {
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			return fmt.Errorf("database init failed: %w", err)
		}
		if c.SQLDB, err = db.DB(); err != nil {
			return fmt.Errorf("database handle failed: %w", err)
		}
		c.Telemetry = database.NewTelemetryRecorder(db, cfg.MowerID)
		utils.Logger.Info("Telemetry archive enabled")
	}

	if cfg.RedisEnabled() {
		client, err := redis.NewRedisClient(cfg)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		c.RedisClient = client
		c.StatusStore = redis.NewStatusStore(redis.NewCacheService(client), cfg.MowerID)
		utils.Logger.Info("Redis status store enabled")
	}

	if cfg.MQTTEnabled() {
		client, err := mqtt.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("mqtt init failed: %w", err)
		}
		c.MQTT = client

		c.Commands = mqtt.NewCommandHandler(c.Loop, c.Controller)
		if err := c.Commands.Subscribe(client, cfg.MQTTTopicPrefix); err != nil {
			return fmt.Errorf("mqtt subscribe failed: %w", err)
		}
	}

	return nil
}

// initStatus 실시간 경로는 허브, 스로틀 경로는 비동기 fan-out
func (c *Container) initStatus() {
	c.Hub = realtime.NewHub()

	c.Throttled = status.NewFanOut()
	if c.MQTT != nil {
		c.Throttled.Add("mqtt", mqtt.NewStatusPublisher(c.MQTT, c.Config.MQTTTopicPrefix))
	}
	if c.StatusStore != nil {
		c.Throttled.Add("redis", c.StatusStore)
	}
	if c.Telemetry != nil {
		c.Throttled.Add("postgres", c.Telemetry)
	}

	var throttled status.Sink
	if c.Throttled.Len() > 0 {
		c.Async = status.NewAsyncSink(c.Throttled, throttledQueueLen)
		throttled = c.Async
	}

	c.Aggregator = status.NewAggregator(status.Sources{
		Mode:        c.Controller,
		Battery:     c.Rig.Battery,
		Cutter:      c.Rig.Cutter,
		Wheels:      c.Rig.Wheels,
		Radio:       c.Rig.Radio,
		Orientation: c.Estimator,
		Clock:       c.Clock,
	}, c.Hub, throttled, c.Config.Tuning.ThrottleSeconds)
	c.Aggregator.Start(c.Loop, c.Config.Tuning.StatusInterval())

	// 전이는 다음 폴링을 기다리지 않고 바로 푸시
	c.Controller.OnChange(func(_, _ state.Mode) {
		c.Aggregator.PollTick()
	})
}

// initSurface REST 핸들러와 서버
func (c *Container) initSurface() {
	deps := api.Deps{
		Loop:    c.Loop,
		Modes:   c.Controller,
		Status:  c.Aggregator,
		Wheels:  c.Rig.Wheels,
		Cutter:  c.Rig.Cutter,
		Clock:   c.Clock,
		Logs:    c.LogStore,
		MowerID: c.Config.MowerID,
		Tuning:  c.Config.Tuning,
	}
	if c.StatusStore != nil {
		deps.History = c.StatusStore
	}
	if c.Telemetry != nil {
		deps.Telemetry = c.Telemetry
	}

	c.Server = api.NewServer(c.Config.HTTPAddr, api.NewHandler(deps), c.Hub)
}

// Start 허브, 제어 루프, HTTP 서버 시작. ctx 가 끝나면 루프와 허브가 멈춘다.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	go c.Loop.Run(ctx)
	c.Server.Start()
	utils.Logger.Infof("Control tasks: %v", c.Loop.Tasks())
}

// Cleanup 모든 리소스 정리
func (c *Container) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if c.Server != nil {
		if err := c.Server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			utils.Logger.Warnf("HTTP server shutdown: %v", err)
		}
	}

	if c.Async != nil {
		c.Async.Close()
		if dropped := c.Async.Dropped(); dropped > 0 {
			utils.Logger.Infof("Dropped %d throttled status pushes", dropped)
		}
	}

	if c.MQTT != nil {
		c.MQTT.Disconnect(250)
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			utils.Logger.Warnf("Redis close: %v", err)
		}
	}

	if c.SQLDB != nil {
		if err := c.SQLDB.Close(); err != nil {
			utils.Logger.Warnf("Database close: %v", err)
		}
	}

	if c.LogStore != nil {
		c.LogStore.Uninstall()
	}
}
