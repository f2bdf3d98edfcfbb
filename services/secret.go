package services

import (
	"sync"

	"vanblog/internal/config"

	"github.com/google/uuid"
)

var (
	generatedSecret string
	secretOnce      sync.Once
)

/**
 * Get the process-wide token secret handed to the comment service
 * @returns {string} Configured jwt_secret, or a random secret generated once per process
 */
func JwtSecret() string {
	if s := config.App().JwtSecret; s != "" {
		return s
	}
	secretOnce.Do(func() {
		generatedSecret = uuid.NewString()
	})
	return generatedSecret
}
