package middleware

import (
	"net/http"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for group middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredGroups []string)
}

// RequireGroup creates middleware that requires a single security group
func RequireGroup(group identity.Group) gin.HandlerFunc {
	return RequireAnyGroup(group)
}

// RequireAnyGroup creates middleware that requires at least one of the groups
func RequireAnyGroup(groups ...identity.Group) gin.HandlerFunc {
	return RequireAnyGroupWithConfig(PermissionConfig{}, groups...)
}

// RequireAnyGroupWithConfig is RequireAnyGroup with custom config
func RequireAnyGroupWithConfig(cfg PermissionConfig, groups ...identity.Group) gin.HandlerFunc {
	required := groupNames(groups)
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, required, "No authentication claims found")
			return
		}

		if !claims.HasAnyPermission(required...) {
			handlePermissionDenied(c, cfg, required, "User is in none of the required groups")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Group check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", required),
				zap.Strings("user_groups", claims.Permissions),
			)
		}

		c.Next()
	}
}

// CheckClaimsFunc is a custom access check on the token claims
type CheckClaimsFunc func(claims *auth.Claims, c *gin.Context) bool

// RequireCustom creates middleware with a custom claims check
func RequireCustom(check CheckClaimsFunc, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, []string{"custom"}, "No authentication claims found")
			return
		}
		if !check(claims, c) {
			handlePermissionDenied(c, cfg, []string{"custom"}, "Custom access check failed")
			return
		}
		c.Next()
	}
}

// HasGroup reports whether the authenticated user is in the group
func HasGroup(c *gin.Context, group identity.Group) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasPermission(string(group))
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, requiredGroups []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredGroups)
		return
	}

	if cfg.Logger != nil {
		userID := ""
		var userGroups []string
		if claims := GetJWTClaims(c); claims != nil {
			userID = claims.UserID
			userGroups = claims.Permissions
		}
		cfg.Logger.Warn("Access denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.Strings("required_groups", requiredGroups),
			zap.Strings("user_groups", userGroups),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "FORBIDDEN",
			"message":    "Access denied: insufficient permissions",
			"request_id": c.GetString("request_id"),
		},
	})
}

func groupNames(groups []identity.Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	return names
}
