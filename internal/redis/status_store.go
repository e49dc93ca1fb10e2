package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"mower-core/internal/common/constants"
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
	"mower-core/internal/utils"
	"time"
)

const storeTimeout = 2 * time.Second

// StatusStore 최신 상태 스냅샷과 배터리 전압 이력을 Redis 에 보관하는 sink
type StatusStore struct {
	cache      interfaces.CacheService
	statusKey  string
	historyKey string
	now        func() time.Time
}

func NewStatusStore(cache interfaces.CacheService, mowerID string) *StatusStore {
	return &StatusStore{
		cache:      cache,
		statusKey:  fmt.Sprintf(constants.MowerStatusPattern, mowerID),
		historyKey: fmt.Sprintf(constants.BatteryHistoryPattern, mowerID),
		now:        time.Now,
	}
}

func (s *StatusStore) Push(status models.Status) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := s.cache.Set(ctx, s.statusKey, data, 0); err != nil {
		return fmt.Errorf("failed to store status: %w", err)
	}

	sample, err := json.Marshal(models.BatterySample{
		Time:           s.now().Unix(),
		BatteryVoltage: status.BatteryVoltage,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal battery sample: %w", err)
	}
	if err := s.cache.LPush(ctx, s.historyKey, sample); err != nil {
		return fmt.Errorf("failed to append battery history: %w", err)
	}
	if err := s.cache.LTrim(ctx, s.historyKey, 0, constants.BatteryHistoryLength-1); err != nil {
		return fmt.Errorf("failed to trim battery history: %w", err)
	}

	return nil
}

// BatteryHistory 오래된 순서의 배터리 전압 이력
func (s *StatusStore) BatteryHistory(ctx context.Context) ([]models.BatterySample, error) {
	raw, err := s.cache.LRange(ctx, s.historyKey, 0, -1)
	if err != nil {
		return nil, err
	}

	samples := make([]models.BatterySample, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var sample models.BatterySample
		if err := json.Unmarshal([]byte(raw[i]), &sample); err != nil {
			utils.Logger.Debugf("skipping bad battery sample: %v", err)
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
