package redis

import (
	"testing"

	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig_SinDireccion(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestOptionsFromConfig_URLTienePrioridad(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:  "redis://:secreto@cache:6380/2",
		Addr: "ignorado:6379",
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secreto", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestOptionsFromConfig_Addr(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Addr: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
}

func TestLocker_Key(t *testing.T) {
	assert.Equal(t, "bodega:confirm:RECEIPT:1", (&Locker{namespace: "bodega"}).key("confirm:RECEIPT:1"))
	assert.Equal(t, "confirm:RECEIPT:1", (&Locker{}).key("confirm:RECEIPT:1"))
}
