// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the calling tenant. Tenancy is conveyed by the
// X-Tenant-ID header, set by the edge gateway after authentication; the
// engine itself never authenticates end users. The middleware parses the
// header once, stashes the numeric tenant ID in the Gin context, and rejects
// requests that omit or mangle it so handlers can assume a valid tenant.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderTenantID is the request header carrying the authenticated tenant.
const HeaderTenantID = "X-Tenant-ID"

// ctxKeyTenantID is the Gin context key under which the tenant ID is stored.
const ctxKeyTenantID = "tenantID"

// TenantFrom returns the tenant ID stashed by RequireTenant. The second
// return value indicates presence.
func TenantFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyTenantID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}

// RequireTenant parses the X-Tenant-ID header and stores the tenant ID in the
// request context. Requests without a usable tenant are rejected with 400 and
// a stable error code; downstream handlers may call TenantFrom without
// re-validating.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderTenantID)
		if raw == "" {
			abortTenant(c, "missing "+HeaderTenantID+" header")
			return
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			abortTenant(c, "invalid "+HeaderTenantID+" header")
			return
		}
		c.Set(ctxKeyTenantID, uint(id))
		c.Next()
	}
}

func abortTenant(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "tenant_required",
		"message":    msg,
	})
}
