package dedupe

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

const markerTTL = 24 * time.Hour

type RedisMarker struct {
	client rueidis.Client
	prefix string
}

func NewRedisMarker(client rueidis.Client, prefix string) *RedisMarker {
	return &RedisMarker{
		client: client,
		prefix: prefix,
	}
}

func (m *RedisMarker) FirstSeen(ctx context.Context, key string) (bool, error) {
	cmd := m.client.B().Set().
		Key(m.prefix + ":" + key).
		Value("1").
		Nx().
		Ex(markerTTL).
		Build()

	result := m.client.Do(ctx, cmd)
	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			// SET NX answers nil when the key already existed.
			return false, nil
		}
		return false, err
	}

	return true, nil
}
