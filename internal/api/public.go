package api

import (
	"net/http"

	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) publicCatalogue(c *gin.Context) {
	filter := service.CatalogueFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    queryInt(c, "limit", 50),
		Skip:     queryInt(c, "skip", 0),
	}

	products, err := h.products.PublicCatalogue(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) publicCategories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
