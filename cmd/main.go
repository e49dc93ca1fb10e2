// cmd/main.go
package main

import (
	"context"
	"mower-core/internal/common/constants"
	"mower-core/internal/config"
	"mower-core/internal/di"
	"mower-core/internal/utils"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// DI 컨테이너 생성
	container, err := di.NewContainer(cfg)
	if err != nil {
		panic("Failed to create DI container: " + err.Error())
	}
	defer container.Cleanup()

	// 제어 루프 시작
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container.Start(ctx)

	// 시작 완료 로그
	utils.Logger.Infof("%s %s started (mower %s)", constants.AppName, constants.AppVersion, cfg.MowerID)
	utils.Logger.Infof("   MQTT: %v, Redis: %v, Postgres: %v", cfg.MQTTEnabled(), cfg.RedisEnabled(), cfg.DatabaseEnabled())

	// 우아한 종료 처리
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 종료 신호 대기
	<-sigChan

	utils.Logger.Info("Shutdown signal received")
	cancel()

	utils.Logger.Infof("%s shutdown completed", constants.AppName)
}
