package handlers

import (
	"errors"
	"net/http"

	"invoiceapp-backend/models"
	"invoiceapp-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles HTTP requests for clients
type ClientHandler struct {
	clientRepo *repository.ClientRepository
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientRepo *repository.ClientRepository) *ClientHandler {
	return &ClientHandler{clientRepo: clientRepo}
}

// CreateClientRequest represents the request body for creating a client
type CreateClientRequest struct {
	UserID  string  `json:"user_id" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// CreateClient handles POST /api/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user_id format")
		return
	}

	client := &models.Client{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := h.clientRepo.Create(c.Request.Context(), client); err != nil {
		errorResponse(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": client})
}

// GetClient handles GET /api/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID format")
		return
	}

	client, err := h.clientRepo.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": client})
}

// ListClients handles GET /api/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	clients, err := h.clientRepo.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients})
}

// DeleteClient handles DELETE /api/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID format")
		return
	}

	if err := h.clientRepo.Delete(c.Request.Context(), id, userID); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
