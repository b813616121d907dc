package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerRejectsSecondHolder(t *testing.T) {
	locker := NewLocker(nil)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "payhere:import", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "payhere:import", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := locker.Acquire(ctx, "finance:rebuild", time.Minute)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := locker.Acquire(ctx, "payhere:import", time.Minute)
	require.NoError(t, err)
	again()
}
