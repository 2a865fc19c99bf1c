package api

import (
	"net/http"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listOrders(c *gin.Context) {
	filter := service.OrderFilter{
		Status: c.Query("status"),
		Limit:  queryInt(c, "limit", 50),
		Skip:   queryInt(c, "skip", 0),
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) nextOrderNumber(c *gin.Context) {
	next, err := h.orders.NextOrderNumber(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_order_id": next})
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) pickItem(c *gin.Context) {
	deducted, err := h.orders.PickItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Item picked",
		"stock_deducted": deducted,
	})
}

type updateCustomerRequest struct {
	CustomerName string `json:"customer_name" binding:"required"`
	Reason       string `json:"reason"`
}

func (h *Handler) updateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old, updated, err := h.orders.UpdateCustomerName(c.Request.Context(), c.Param("id"), req.CustomerName, req.Reason, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Customer name updated",
		"old_value": old,
		"new_value": updated,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Reason, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Order status updated",
		"old_value": old,
		"new_value": req.Status,
	})
}

type addItemRequest struct {
	SKU              string `json:"sku" binding:"required"`
	QuantityRequired int    `json:"quantity_required" binding:"required,min=1"`
	Reason           string `json:"reason"`
}

func (h *Handler) addOrderItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemID, err := h.orders.AddItem(c.Request.Context(), c.Param("id"), req.SKU, req.QuantityRequired, req.Reason, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added",
		"item_id": itemID,
	})
}

func (h *Handler) removeOrderItem(c *gin.Context) {
	restored, err := h.orders.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), c.Query("reason"), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Item removed",
		"stock_restored": restored,
	})
}

type updateQuantityRequest struct {
	QuantityRequired int    `json:"quantity_required" binding:"required,min=1"`
	Reason           string `json:"reason"`
}

func (h *Handler) updateItemQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adjusted, err := h.orders.UpdateItemQuantity(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.QuantityRequired, req.Reason, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Quantity updated",
		"stock_adjusted": adjusted,
	})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	orderNumber, err := h.orders.DeleteOrder(c.Request.Context(), c.Param("id"), c.Query("reason"), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Order deleted",
		"order_number": orderNumber,
	})
}

func (h *Handler) modificationHistory(c *gin.Context) {
	logs, err := h.orders.ModificationHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
