package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-qlearn"
)

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, qlearn.DefaultParams(), c.Params)
	assert.Equal(t, qlearn.DefaultRewards(), c.Rewards)
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("QTTT_EPISODES", "500")
	t.Setenv("QTTT_SEED", "42")
	t.Setenv("QTTT_LEARNING_RATE", "0.5")
	t.Setenv("QTTT_REWARD_ILLEGAL", "-5")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 500, c.Episodes)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 0.5, c.Params.LearningRate)
	assert.Equal(t, -5.0, c.Rewards.Illegal)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("QTTT_DISCOUNT_FACTOR", "lots")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("QTTT_ADDR=:9999\nQTTT_TABLE=agent.gob\n"), 0o644))

	// Variables already in the environment win over the file.
	t.Setenv("QTTT_TABLE", "mine.gob")
	t.Setenv("QTTT_ADDR", "")
	os.Unsetenv("QTTT_ADDR")

	c, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.Addr)
	assert.Equal(t, "mine.gob", c.Table)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Rewards.Win = -2
	assert.Error(t, c.Validate())

	c = Default()
	c.Params.ExplorationDecay = 2
	assert.Error(t, c.Validate())
}
