// Package handlers implements the HTTP handlers for the card API.
package handlers

import (
	"log/slog"

	"trkart/internal/config"
	"trkart/internal/service"
)

// Handler carries the service dependencies for all endpoints
type Handler struct {
	authService        *service.AuthService
	cardService        *service.CardService
	feasibilityService *service.FeasibilityService
	transactionService *service.TransactionService
	healthChecker      HealthChecker
	sessionCfg         config.SessionConfig
	logger             *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	authService *service.AuthService,
	cardService *service.CardService,
	feasibilityService *service.FeasibilityService,
	transactionService *service.TransactionService,
	healthChecker HealthChecker,
	sessionCfg config.SessionConfig,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authService:        authService,
		cardService:        cardService,
		feasibilityService: feasibilityService,
		transactionService: transactionService,
		healthChecker:      healthChecker,
		sessionCfg:         sessionCfg,
		logger:             logger,
	}
}
