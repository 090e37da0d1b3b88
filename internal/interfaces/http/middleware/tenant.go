package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
	"github.com/biasharahub/backend/internal/interfaces/http/dto"
)

// TenantHeaderKey is the fallback header carrying the tenant ID for requests
// without a staff token (e.g. customer-facing checkout)
const TenantHeaderKey = "X-Tenant-ID"

// TenantResolver resolves the active tenant for a request and stores it on
// the request context. Extraction order: JWT claim, then X-Tenant-ID header.
// Routes behind this middleware always see a validated, active tenant;
// financial operations downstream still re-check via tenant.RequireTenant.
func TenantResolver(tenants tenant.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetString(JWTTenantIDKey)
		if raw == "" {
			raw = c.GetHeader(TenantHeaderKey)
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Tenant not specified"))
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid tenant ID"))
			return
		}

		ctx := c.Request.Context()
		tn, err := tenants.FindByID(ctx, tenantID)
		if err != nil {
			logger.L(ctx).Debug("tenant resolution failed",
				zap.String("tenant_id", raw), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Unknown tenant"))
			return
		}
		if !tn.Active {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse("TENANT_INACTIVE", "Tenant is deactivated"))
			return
		}

		ctx = tenant.WithActiveTenant(ctx, tenant.ActiveTenant{ID: tn.ID, Schema: tn.SchemaName})
		ctx = logger.WithTenantSchema(ctx, tn.SchemaName)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
