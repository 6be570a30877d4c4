package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/leadloom/leadloom/internal/orgcontext"
)

const orgHeader = "X-Org-Id"

// OrgRequired resolves the acting organization from the request header,
// falling back to the configured default org for single-tenant installs.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(orgHeader))

		var orgID int64
		if raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil || parsed == 0 {
				AbortWithError(c, newValidationError("organization", "invalid_organization", "invalid organization"))
				return
			}
			orgID = parsed.Int64()
		} else {
			orgID = s.cfg.DefaultOrgID
		}

		if orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
