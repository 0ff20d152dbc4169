package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-service/internal/auth"
	"crm-service/internal/cache"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// CallerKey is the gin context key holding the resolved *auth.Caller.
const CallerKey = "caller"

// BearerAuth verifies the Authorization header and attaches the resolved
// caller to the request context. Permissions come from the role-level
// Redis cache, falling back to the database on a miss.
func BearerAuth(issuer *auth.TokenIssuer, roles repository.RoleRepositoryInterface, permCache *cache.PermissionCache, logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("component", "auth_middleware")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		permissions, err := resolvePermissions(c, claims, roles, permCache, log)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		caller, err := auth.CallerFromClaims(claims, permissions)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// resolvePermissions loads the role's permission strings, cache first.
// SUPER_ADMIN short-circuits: platform callers hold every permission
// implicitly, so there is nothing to load.
func resolvePermissions(c *gin.Context, claims *auth.Claims, roles repository.RoleRepositoryInterface, permCache *cache.PermissionCache, log *logrus.Entry) ([]string, error) {
	if claims.Role == models.RoleSuperAdmin {
		return nil, nil
	}

	roleID, err := uuid.Parse(claims.RoleID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	ctx := c.Request.Context()
	if cached, err := permCache.Get(ctx, roleID); err != nil {
		log.WithError(err).Warn("Permission cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	role, err := roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	permissions := role.PermissionStrings()
	if err := permCache.Set(ctx, roleID, permissions); err != nil {
		log.WithError(err).Warn("Permission cache write failed")
	}
	return permissions, nil
}

// RequirePermission rejects callers whose role does not carry the
// rendered "action:subject" permission. Mounted after BearerAuth;
// platform callers pass implicitly.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok || !caller.HasPermission(perm) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFrom extracts the authenticated caller set by BearerAuth.
func CallerFrom(c *gin.Context) (*auth.Caller, bool) {
	value, exists := c.Get(CallerKey)
	if !exists {
		return nil, false
	}
	caller, ok := value.(*auth.Caller)
	return caller, ok
}
