package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

func TestOpenLocker_SinRedisUsaLockEnProceso(t *testing.T) {
	cfg := &config.Config{Confirm: config.ConfirmConfig{LockTTL: time.Second}}

	locker, closeLocker, err := openLocker(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer closeLocker()
	assert.IsType(t, &memory.Locker{}, locker)
}

func TestOpenLocker_ErrorDeRedisSeDevuelve(t *testing.T) {
	cfg := &config.Config{
		Redis:   config.RedisConfig{URL: "http://no-es-redis"},
		Confirm: config.ConfirmConfig{LockTTL: time.Second},
	}

	locker, closeLocker, err := openLocker(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Nil(t, locker)
	assert.Nil(t, closeLocker)
}

func TestOpenStores_MemoryCierraSinError(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory"}}

	st, err := openStores(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, st.txRunner)
	assert.NotPanics(t, st.close)
}
