package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker/pkg/response"
)

// Root GET /
func Root(c *gin.Context) {
	response.Message(c, http.StatusOK, "Welcome to Expense Tracker API")
}

// Health GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Expense Tracker API is running",
		"timestamp": time.Now().UTC(),
	})
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, "Route not found", nil)
}
