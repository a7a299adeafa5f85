/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ritmofit/cupos/pkg/config"
	"github.com/ritmofit/cupos/pkg/logger"
)

const (
	// ClientIDKey holds the authenticated client in the gin context
	ClientIDKey = "clientId"

	APIKeyHeader = "X-API-Key"

	basicRealm = `Basic realm="cupos"`
)

// Auth picks the authentication middleware named by apiServer.auth.mode
func Auth(cfg *config.AppConfig) gin.HandlerFunc {
	if cfg.APIServer.Auth.Mode == config.AuthModeBasic {
		return BasicAuth(cfg)
	}
	return APIKeyAuth(cfg)
}

// APIKeyAuth accepts requests whose X-API-Key matches one of apiServer.auth.apiKeys.
// The client id is "apikey-<n>", n being the position of the key in the list.
func APIKeyAuth(cfg *config.AppConfig) gin.HandlerFunc {
	keys := cfg.APIServer.Auth.APIKeys
	return authenticate(cfg, func(c *gin.Context) (string, bool) {
		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			return "", false
		}
		for i, key := range keys {
			if secureEqual(presented, key) {
				return "apikey-" + strconv.Itoa(i), true
			}
		}
		return "", false
	}, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + APIKeyHeader + " header"})
	})
}

// BasicAuth accepts requests carrying one of apiServer.auth.basicUsers
func BasicAuth(cfg *config.AppConfig) gin.HandlerFunc {
	users := cfg.APIServer.Auth.BasicUsers
	return authenticate(cfg, func(c *gin.Context) (string, bool) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || username == "" {
			return "", false
		}
		for _, u := range users {
			// evaluate both so a wrong user costs the same as a wrong password
			userOK := secureEqual(username, u.Username)
			passOK := secureEqual(password, u.Password)
			if userOK && passOK {
				return username, true
			}
		}
		return "", false
	}, func(c *gin.Context) {
		c.Header("WWW-Authenticate", basicRealm)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	})
}

func authenticate(cfg *config.AppConfig, check func(*gin.Context) (string, bool), reject func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.APIServer.Auth.Enabled {
			c.Next()
			return
		}

		client, ok := check(c)
		if !ok {
			logger.Logger(c.Request.Context()).
				WithField("path", c.FullPath()).
				WithField("mode", cfg.APIServer.Auth.Mode).
				Warn("rejected unauthenticated request")
			reject(c)
			return
		}

		c.Set(ClientIDKey, client)
		c.Next()
	}
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
