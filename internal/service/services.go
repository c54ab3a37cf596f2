package service

import (
	"time"

	"github.com/dgarcia/dashboard-api/internal/auth"
	"github.com/dgarcia/dashboard-api/internal/config"
	"github.com/dgarcia/dashboard-api/internal/repository"
)

type Services struct {
	Auth     *AuthService
	User     *UserService
	Analysis *AnalysisService
}

func NewServices(store repository.Store, cfg *config.Config) *Services {
	issuer := auth.NewTokenIssuer(
		cfg.JWTSecret,
		cfg.JWTIssuer,
		cfg.JWTAudience,
		time.Duration(cfg.JWTExpirationHours)*time.Hour,
	)

	return &Services{
		Auth:     NewAuthService(store, issuer),
		User:     NewUserService(store),
		Analysis: NewAnalysisService(store),
	}
}
