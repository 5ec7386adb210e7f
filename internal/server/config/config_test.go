package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "file:accessconsole?mode=memory&cache=shared", c.DatabaseDSN)
	assert.True(t, c.Seed)
	assert.Equal(t, time.Minute, c.DeletedRetention)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.False(t, c.SnapshotsEnabled())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "text", c.LogFormat)
}
