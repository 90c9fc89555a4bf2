package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shorts-backend/internal/config"
)

type CatalogHandler struct {
	catalog *config.Catalog
}

func NewCatalogHandler(catalog *config.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) GetStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": h.catalog.DefaultStyle,
		"styles":  h.catalog.Styles,
	})
}

func (h *CatalogHandler) GetVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": h.catalog.DefaultVoice,
		"voices":  h.catalog.Voices,
	})
}
