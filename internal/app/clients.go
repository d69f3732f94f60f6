package app

import (
	"github.com/accredify/accredify-backend/internal/clients/gemini"
	redisclient "github.com/accredify/accredify-backend/internal/clients/redis"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type Clients struct {
	Gemini gemini.Client
	Cache  redisclient.CoverageCache
}

// wireClients initializes optional external clients. Both are advisory: a
// failed init is logged and the slot stays nil, and every consumer tolerates
// a nil client.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var c Clients

	geminiClient, err := gemini.NewClient(log)
	if err != nil {
		log.Warn("Gemini classifier unavailable, using rule-based frequency resolution only", "error", err)
	} else {
		c.Gemini = geminiClient
	}

	cache, err := redisclient.NewCoverageCache(log)
	if err != nil {
		log.Warn("Redis coverage cache unavailable, status reads hit the database", "error", err)
	} else {
		c.Cache = cache
	}

	return c
}
