package api

import (
	"net/http"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listEmployees(c *gin.Context) {
	employees, err := h.employees.List(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *Handler) createEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employees.Create(c.Request.Context(), &req, auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}

func (h *Handler) toggleEmployeeStatus(c *gin.Context) {
	status, err := h.employees.ToggleStatus(c.Request.Context(), c.Param("id"), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated",
		"status":  status,
	})
}

type updatePresenceRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updatePresence(c *gin.Context) {
	var req updatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.employees.UpdatePresence(c.Request.Context(), c.Param("id"), req.Status, auth.ActorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Presence updated"})
}

func (h *Handler) staffPresence(c *gin.Context) {
	views, err := h.employees.StaffPresence(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) presenceLog(c *gin.Context) {
	logs, err := h.employees.PresenceLog(c.Request.Context(), queryInt(c, "limit", 50), auth.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
