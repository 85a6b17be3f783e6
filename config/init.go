package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

type Config struct {
	AppConfig    *AppConfig
	Logger       *logger.Config
	Tracing      *tracing.JaegerConfig
	MailTmConfig *MailTmConfig
	OneSecConfig *OneSecConfig
	TmProConfig  *TmProConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:    &AppConfig{},
		Logger:       &logger.Config{},
		Tracing:      &tracing.JaegerConfig{},
		MailTmConfig: &MailTmConfig{},
		OneSecConfig: &OneSecConfig{},
		TmProConfig:  &TmProConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading emailtemp config: %v", err)
	}

	config.AppConfig.Logger = config.Logger
	config.AppConfig.Tracing = config.Tracing

	return config, nil
}
