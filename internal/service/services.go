package service

import (
	"github.com/dom/college-tracker/internal/auth"
	"github.com/dom/college-tracker/internal/config"
	"github.com/dom/college-tracker/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Sessions    *SessionResolver
	Dashboard   *DashboardService
	Application *ApplicationService
	University  *UniversityService
	Profile     *ProfileService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, publisher ChangePublisher) *Services {
	bearerTokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, auth.AudienceBearer, cfg.BearerTokenTTL)
	sessionTokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, auth.AudienceSession, cfg.SessionTokenTTL)

	return &Services{
		Auth: NewAuthService(repos.User, bearerTokens, sessionTokens),
		Sessions: NewSessionResolver(repos.User, map[Transport]TokenValidator{
			TransportBearer:  bearerTokens,
			TransportSession: sessionTokens,
		}),
		Dashboard:   NewDashboardService(repos.User, repos.Application, cfg.UpcomingWindowDays, cfg.UpcomingLimit),
		Application: NewApplicationService(repos.Application, repos.University, repos.Requirement, publisher),
		University:  NewUniversityService(repos.University),
		Profile:     NewProfileService(repos.User),
	}
}
