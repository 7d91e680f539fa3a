package api

import (
	"context"

	"github.com/abacusquest/abacusquest/internal/auth"
	"github.com/abacusquest/abacusquest/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Students       services.StudentService
	Progress       services.ProgressService
	Practice       services.PracticeService
	Gamification   services.GamificationService
	Lists          services.ListService
	Tokens         *auth.Issuer
	DB             Pinger
	AllowedOrigins []string
}
