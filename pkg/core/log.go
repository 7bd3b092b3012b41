package core

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitLogger loads the config, builds the app logger from its "log" section
// and makes it the global zap logger.
func InitLogger() (*zap.Logger, error) {
	if err := InitConfig(); err != nil {
		return nil, err
	}

	settings := viper.Sub("log")

	if settings == nil {
		settings = viper.New()
	}

	settings.SetDefault("level", "info")

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(settings.GetString("level"))); err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stdout"}
	config.Level.SetLevel(level.Level())

	if !settings.GetBool("trace") {
		config.DisableStacktrace = true
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
