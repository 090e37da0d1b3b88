package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"json production", ProductionConfig()},
		{"console development", DefaultConfig()},
		{"unknown level defaults to info", &Config{Level: "verbose", Format: "json", Output: "stdout"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestContextLogger(t *testing.T) {
	t.Run("missing logger degrades to no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).Info("ignored")
		})
	})

	t.Run("enriches with request and tenant fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		ctx := WithContext(context.Background(), zap.New(core))
		ctx = WithRequestID(ctx, "req-123")
		ctx = WithTenantSchema(ctx, "acme_salon")

		L(ctx).Info("payout requested")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "acme_salon", fields["tenant_schema"])
	})

	t.Run("with adds fields to children", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		L(ctx).With(zap.String("payout_id", "p-1")).Warn("transfer failed")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "p-1", logs.All()[0].ContextMap()["payout_id"])
	})
}
