package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisLimiterKeyHasSingleNamespace(t *testing.T) {
	limiter := NewRedisLimiter(nil, "login", 5, time.Minute)

	assert.Equal(t, "ratelimit:login:login:10.0.0.1", limiter.redisKey("login:10.0.0.1"))
	assert.Equal(t, "ratelimit:kiosk:kiosk:10.0.0.1", NewRedisLimiter(nil, "kiosk", 30, time.Minute).redisKey("kiosk:10.0.0.1"))
}
