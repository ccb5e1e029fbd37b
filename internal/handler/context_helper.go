package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/middleware"
	"github.com/becalab/scholarship-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextAdminKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func utmFromQuery(c *gin.Context) models.UTMParams {
	return models.UTMParams{
		Source:   c.Query("utm_source"),
		Medium:   c.Query("utm_medium"),
		Campaign: c.Query("utm_campaign"),
		Term:     c.Query("utm_term"),
		Content:  c.Query("utm_content"),
	}
}

func utmFromHeaders(c *gin.Context) models.UTMParams {
	return models.UTMParams{
		Source:   c.GetHeader("X-UTM-Source"),
		Medium:   c.GetHeader("X-UTM-Medium"),
		Campaign: c.GetHeader("X-UTM-Campaign"),
		Term:     c.GetHeader("X-UTM-Term"),
		Content:  c.GetHeader("X-UTM-Content"),
	}
}
