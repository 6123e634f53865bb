package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// TrainingConfig holds the boosting hyperparameters for a training run.
// Defaults match what the production model has always been trained with;
// a training.yml can override them per run.
type TrainingConfig struct {
	Rounds         int     `mapstructure:"rounds"`
	MaxDepth       int     `mapstructure:"maxDepth"`
	LearningRate   float64 `mapstructure:"learningRate"`
	MinSamplesLeaf int     `mapstructure:"minSamplesLeaf"`
	Lambda         float64 `mapstructure:"lambda"`
}

// DefaultTrainingConfig returns the standard hyperparameters.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Rounds:         100,
		MaxDepth:       6,
		LearningRate:   0.1,
		MinSamplesLeaf: 1,
		Lambda:         1.0,
	}
}

// LoadTrainingConfig reads training.yml if present, otherwise defaults.
func LoadTrainingConfig() (TrainingConfig, error) {
	v := viper.New()

	v.SetConfigName("training")
	v.SetConfigType("yml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUANTCLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTrainingConfig()
	v.SetDefault("training.rounds", defaults.Rounds)
	v.SetDefault("training.maxDepth", defaults.MaxDepth)
	v.SetDefault("training.learningRate", defaults.LearningRate)
	v.SetDefault("training.minSamplesLeaf", defaults.MinSamplesLeaf)
	v.SetDefault("training.lambda", defaults.Lambda)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return TrainingConfig{}, err
		}
	}

	var cfg TrainingConfig
	if err := v.UnmarshalKey("training", &cfg); err != nil {
		return TrainingConfig{}, err
	}
	if err := validateTrainingConfig(cfg); err != nil {
		return TrainingConfig{}, err
	}
	return cfg, nil
}

func validateTrainingConfig(cfg TrainingConfig) error {
	if cfg.Rounds <= 0 {
		return errors.New("training.rounds must be positive")
	}
	if cfg.MaxDepth <= 0 {
		return errors.New("training.maxDepth must be positive")
	}
	if cfg.LearningRate <= 0 {
		return errors.New("training.learningRate must be positive")
	}
	if cfg.MinSamplesLeaf <= 0 {
		return errors.New("training.minSamplesLeaf must be positive")
	}
	if cfg.Lambda < 0 {
		return errors.New("training.lambda must not be negative")
	}
	return nil
}
