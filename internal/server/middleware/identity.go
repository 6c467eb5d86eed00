package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/access"
	"bahth.org/engagement/internal/common"
)

// Headers set by the platform gateway.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"
)

const principalKey = "engagement.principal"

// TokenVerifier checks the gateway bearer token.
type TokenVerifier interface {
	Verify(token string) bool
}

// cachedVerifier is implemented by verifiers that can tell a token already
// accepted without hashing it again. Such tokens skip the failure budget.
type cachedVerifier interface {
	Cached(token string) bool
}

// GatewayAuth trusts the identity headers only on requests carrying the
// gateway token. Requests without a token continue anonymously, so public
// routes stay reachable and guarded routes answer 401.
//
// Every rejected token is charged to the client IP in failures. Once the
// IP is out of budget its unknown tokens are refused with 429 before
// argon2 runs.
// A nil failures limiter disables the budget.
func GatewayAuth(verifier TokenVerifier, failures *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		ipKey := "auth:" + c.ClientIP()
		if failures != nil && failures.Exhausted(ipKey) && !isCached(verifier, token) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": tooManyRequests})
			return
		}
		if !verifier.Verify(token) {
			if failures != nil {
				failures.Allow(ipKey)
			}
			log.WithField("ip", c.ClientIP()).Warn("gateway token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrUnauthenticated.Error()})
			return
		}

		c.Set(principalKey, access.Principal{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Roles:  access.ParseRoles(c.GetHeader(HeaderUserRoles)),
		})
		c.Next()
	}
}

func isCached(verifier TokenVerifier, token string) bool {
	cv, ok := verifier.(cachedVerifier)
	return ok && cv.Cached(token)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// PrincipalFrom returns the caller of c. The zero Principal is anonymous.
func PrincipalFrom(c *gin.Context) access.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Principal{}
}

// Require lets the request through only when the caller holds capability.
// Anonymous callers get 401, authenticated callers without the role get 403.
func Require(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if !p.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrUnauthenticated.Error()})
			return
		}
		if !p.Can(capability) {
			log.WithFields(log.Fields{
				"user_id":    p.UserID,
				"capability": capability.String(),
			}).Warn("capability denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": common.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
