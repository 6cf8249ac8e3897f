package memory

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeperDefaults(t *testing.T) {
	svc := newDegradedService(t)

	sweeper, err := NewSweeper(svc, SweeperConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "30 3 * * *", sweeper.cfg.Schedule)
	assert.Equal(t, 180*24*time.Hour, sweeper.cfg.MaxAge)
}

func TestNewSweeperRejectsInvalidSchedule(t *testing.T) {
	svc := newDegradedService(t)

	_, err := NewSweeper(svc, SweeperConfig{Schedule: "not a cron line", Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid retention schedule")
}

func TestSweeperStartStop(t *testing.T) {
	svc := newDegradedService(t)

	sweeper, err := NewSweeper(svc, SweeperConfig{Schedule: "0 4 * * *", Logger: zerolog.Nop()})
	require.NoError(t, err)

	require.NoError(t, sweeper.Start())
	sweeper.Stop()
}
