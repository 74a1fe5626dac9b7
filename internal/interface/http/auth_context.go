package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/lifestyle"
)

const (
	authClaimsKey = "auth_claims"
	assessmentKey = "assessment"
)

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// userID returns the authenticated user id or uuid.Nil.
func userID(c *gin.Context) uuid.UUID {
	claims, ok := getClaims(c)
	if !ok {
		return uuid.Nil
	}
	return claims.UserID
}

func setAssessment(c *gin.Context, a lifestyle.Assessment) {
	c.Set(assessmentKey, a)
}

func getAssessment(c *gin.Context) (lifestyle.Assessment, bool) {
	value, ok := c.Get(assessmentKey)
	if !ok {
		return lifestyle.Assessment{}, false
	}
	a, ok := value.(lifestyle.Assessment)
	return a, ok
}
