package middleware

import (
	"net/http"
	"time"

	"ml-prediction-service/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions,
	}
	corsAllowHeaders = []string{"Origin", "Accept", "Authorization", "Content-Type", "X-Requested-With", headerRequestID}
)

const corsMaxAge = 10 * time.Minute

// CORS answers preflight requests and decorates responses for allowed origins.
// A "*" entry allows every origin; combined with credentials the caller's
// Origin is echoed back since browsers reject a literal "*" in that case.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     corsAllowMethods,
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           corsMaxAge,
	}

	var origins []string
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		origins = append(origins, o)
	}

	switch {
	case wildcard && cfg.AllowCredentials:
		c.AllowOriginFunc = func(string) bool { return true }
	case wildcard:
		c.AllowAllOrigins = true
	case len(origins) > 0:
		c.AllowOrigins = origins
	default:
		// cors.New refuses a config that admits no origin at all.
		c.AllowOriginFunc = func(string) bool { return false }
	}
	return c
}
