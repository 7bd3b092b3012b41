package core

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var AppName = "DI App"
var Version = "latest"

// EnvValues holds key=value overrides, usually from the --env flag.
var EnvValues = []string{}

// Settings is the "bootstrap" section of the app config.
//
//	bootstrap:
//	  modules:
//	    - logging
//	    - storage
type Settings struct {
	Modules []string `mapstructure:"modules"`
}

func InitConfig() error {
	configName := os.Getenv("APP_CONFIG")
	if configName == "" {
		configName = "app"
	}
	viperApp := viper.New()
	viperApp.SetConfigName(configName)
	viperApp.SetConfigType("yaml")
	if extra := os.Getenv("APP_CONFIG_PATH"); extra != "" {
		viperApp.AddConfigPath(extra)
	}
	viperApp.AddConfigPath("config")
	viperApp.AddConfigPath("../config")
	viperApp.AddConfigPath("$HOME/.di")
	viperApp.AddConfigPath(".")

	err := viperApp.ReadInConfig()
	if err != nil {
		log.Printf("WARN! read config failed. %+v", err)
	}
	if err := viper.MergeConfigMap(viperApp.AllSettings()); err != nil {
		return err
	}

	envfile := os.Getenv("ENV")
	if envfile != "" {
		profileConfig := viper.New()
		profileConfig.SetConfigName(envfile)
		profileConfig.SetConfigType("yaml")
		if extra := os.Getenv("APP_CONFIG_PATH"); extra != "" {
			profileConfig.AddConfigPath(extra)
		}
		profileConfig.AddConfigPath("config")
		profileConfig.AddConfigPath("../config")
		err := profileConfig.ReadInConfig()
		if err != nil {
			return fmt.Errorf("load env profile %s failed, %w", envfile, err)
		}
		if err := viper.MergeConfigMap(profileConfig.AllSettings()); err != nil {
			return err
		}
		log.Printf("env profile %s loaded", envfile)
	}

	for _, item := range EnvValues {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("env value %q should be key=value", item)
		}
		viper.Set(key, value)
	}

	log.Print("load config done.")
	return nil
}

func LoadSettings() (Settings, error) {
	settings := Settings{}
	if err := viper.UnmarshalKey("bootstrap", &settings); err != nil {
		return settings, fmt.Errorf("read bootstrap settings failed, %w", err)
	}
	zap.L().Debug("bootstrap settings loaded", zap.Strings("modules", settings.Modules))
	return settings, nil
}
