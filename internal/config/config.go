// Package config reads the defaults of the command line tools from the
// environment, optionally populated from .env files.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
)

// Config holds the settings shared by the qttt commands.
// Every field can be overridden by a command line flag.
type Config struct {
	Seed     int64  // QTTT_SEED, 0 means time-based
	Table    string // QTTT_TABLE: path of the gob table file
	OutDir   string // QTTT_OUT_DIR: directory for parquet logs and charts
	Addr     string // QTTT_ADDR: listen address of qttt-serve
	Episodes int    // QTTT_EPISODES: episodes per training stage

	Params  qlearn.Params
	Rewards qlearn.Rewards
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Table:    "qtable.gob",
		OutDir:   "out",
		Addr:     "localhost:8080",
		Episodes: 10000,
		Params:   qlearn.DefaultParams(),
		Rewards:  qlearn.DefaultRewards(),
	}
}

// Load reads the given .env files, if they exist, into the environment
// without overriding variables that are already set, then returns the
// configuration from the environment.
func Load(files ...string) (Config, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, errors.Wrap(err, "failed to load env files")
		}
	}

	return FromEnv()
}

// FromEnv returns the configuration from the environment, with defaults
// for unset variables.
func FromEnv() (Config, error) {
	c := Default()
	var err error
	str(&c.Table, "QTTT_TABLE")
	str(&c.OutDir, "QTTT_OUT_DIR")
	str(&c.Addr, "QTTT_ADDR")
	setErr(&err, int64Var(&c.Seed, "QTTT_SEED"))
	setErr(&err, intVar(&c.Episodes, "QTTT_EPISODES"))

	setErr(&err, floatVar(&c.Params.LearningRate, "QTTT_LEARNING_RATE"))
	setErr(&err, floatVar(&c.Params.DiscountFactor, "QTTT_DISCOUNT_FACTOR"))
	setErr(&err, floatVar(&c.Params.ExplorationRate, "QTTT_EXPLORATION_RATE"))
	setErr(&err, floatVar(&c.Params.ExplorationDecay, "QTTT_EXPLORATION_DECAY"))
	setErr(&err, floatVar(&c.Params.ExplorationMin, "QTTT_EXPLORATION_MIN"))

	setErr(&err, floatVar(&c.Rewards.Win, "QTTT_REWARD_WIN"))
	setErr(&err, floatVar(&c.Rewards.Loss, "QTTT_REWARD_LOSS"))
	setErr(&err, floatVar(&c.Rewards.Draw, "QTTT_REWARD_DRAW"))
	setErr(&err, floatVar(&c.Rewards.Illegal, "QTTT_REWARD_ILLEGAL"))
	setErr(&err, floatVar(&c.Rewards.NoEffect, "QTTT_REWARD_NO_EFFECT"))
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks the learning parameters and rewards.
func (c Config) Validate() error {
	if c.Episodes < 0 {
		return errors.Errorf("episodes must be >= 0, got %d", c.Episodes)
	}

	if err := c.Params.Validate(); err != nil {
		return err
	}

	return c.Rewards.Validate()
}

func setErr(dst *error, err error) {
	if *dst == nil {
		*dst = err
	}
}

func str(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func intVar(dst *int, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}

	*dst = n
	return nil
}

func int64Var(dst *int64, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}

	*dst = n
	return nil
}

func floatVar(dst *float64, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}

	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}

	*dst = x
	return nil
}
