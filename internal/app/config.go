package app

import (
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	Port         string
	Environment  string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	port := utils.GetEnv("PORT", "8080", log)
	environment := utils.GetEnv("APP_ENV", "development", log)
	return Config{
		JWTSecretKey: jwtSecretKey,
		Port:         port,
		Environment:  environment,
	}
}
