package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"invoiceapp-backend/models"
	"invoiceapp-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles HTTP requests for contracts
type ContractHandler struct {
	contractService *service.ContractService
	maxFileSize     int64
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		maxFileSize:     10 * 1024 * 1024, // 10MB
	}
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// userIDFrom extracts and validates the user_id from query or form.
// Authentication itself is delegated to the hosted identity layer in
// front of this service; by the time a request lands here the id is
// trusted.
func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		raw = c.PostForm("user_id")
	}
	if raw == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user_id format")
		return uuid.Nil, false
	}
	return userID, true
}

func contractIDFrom(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid contract ID format")
		return uuid.Nil, false
	}
	return id, true
}

// uploadResponse is the caller-facing result of a contract upload
type uploadResponse struct {
	ContractID    uuid.UUID            `json:"contract_id"`
	PdfURL        string               `json:"pdf_url"`
	PlanName      *string              `json:"plan_name"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       *time.Time           `json:"end_date"`
	BillingCycle  *models.BillingCycle `json:"billing_cycle"`
	AutoRenew     bool                 `json:"auto_renew"`
	ClientName    *string              `json:"client_name"`
	ClientID      *uuid.UUID           `json:"client_id"`
	MissingFields []string             `json:"missing_fields"`
}

// UploadContract handles POST /api/contracts/upload
func (h *ContractHandler) UploadContract(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		errorResponse(c, http.StatusBadRequest, "FILE_TOO_LARGE", "File size exceeds maximum of 10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "FILE_READ_ERROR", err.Error())
		return
	}

	result, err := h.contractService.ProcessUpload(c.Request.Context(), service.ProcessUploadRequest{
		UserID:   userID,
		Filename: fileHeader.Filename,
		PDF:      pdf,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadFailed):
			errorResponse(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		case errors.Is(err, service.ErrExtractionFailed):
			errorResponse(c, http.StatusInternalServerError, "EXTRACTION_FAILED", err.Error())
		default:
			errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	contract := result.Contract
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": uploadResponse{
			ContractID:    contract.ID,
			PdfURL:        result.PdfURL,
			PlanName:      contract.PlanName,
			StartDate:     contract.StartDate,
			EndDate:       contract.EndDate,
			BillingCycle:  contract.BillingCycle,
			AutoRenew:     contract.AutoRenew,
			ClientName:    result.ClientName,
			ClientID:      contract.ClientID,
			MissingFields: result.MissingFields,
		},
	})
}

// GetContract handles GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	id, ok := contractIDFrom(c)
	if !ok {
		return
	}

	result, err := h.contractService.GetContract(c.Request.Context(), service.GetContractRequest{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Contract not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Contract})
}

// ListContracts handles GET /api/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var status *models.ContractStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ContractStatus(raw)
		status = &s
	}

	result, err := h.contractService.ListContracts(c.Request.Context(), service.ListContractsRequest{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Contracts})
}

// UpdateContractRequest represents the request body for updating a contract
type UpdateContractRequest struct {
	ClientID     *uuid.UUID `json:"client_id"`
	PlanName     *string    `json:"plan_name"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	BillingCycle *string    `json:"billing_cycle"`
	AutoRenew    *bool      `json:"auto_renew"`
}

// UpdateContract handles PUT /api/contracts/:id — manual completion of
// fields the extraction pipeline reported missing, and general edits
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	id, ok := contractIDFrom(c)
	if !ok {
		return
	}

	var req UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	found, err := h.contractService.GetContract(c.Request.Context(), service.GetContractRequest{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Contract not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	contract := found.Contract
	if req.ClientID != nil {
		contract.ClientID = req.ClientID
	}
	if req.PlanName != nil {
		contract.PlanName = req.PlanName
	}
	if req.StartDate != nil {
		contract.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		contract.EndDate = req.EndDate
	}
	if req.BillingCycle != nil {
		cycle, err := models.ParseBillingCycle(*req.BillingCycle)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_BILLING_CYCLE", err.Error())
			return
		}
		contract.BillingCycle = &cycle
	}
	if req.AutoRenew != nil {
		contract.AutoRenew = *req.AutoRenew
	}

	result, err := h.contractService.UpdateContract(c.Request.Context(), service.UpdateContractRequest{Contract: contract})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Contract})
}

// CancelContract handles POST /api/contracts/:id/cancel
func (h *ContractHandler) CancelContract(c *gin.Context) {
	h.transition(c, h.contractService.CancelContract)
}

// RenewContract handles POST /api/contracts/:id/renew
func (h *ContractHandler) RenewContract(c *gin.Context) {
	h.transition(c, h.contractService.RenewContract)
}

func (h *ContractHandler) transition(c *gin.Context, fn func(ctx context.Context, req service.GetContractRequest) (*service.GetContractResult, error)) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	id, ok := contractIDFrom(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), service.GetContractRequest{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Contract not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Contract})
}

// GetContractPdf handles GET /api/contracts/:id/pdf
func (h *ContractHandler) GetContractPdf(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	id, ok := contractIDFrom(c)
	if !ok {
		return
	}

	url, err := h.contractService.ContractPdfURL(c.Request.Context(), service.GetContractRequest{ID: id, UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContractNotFound):
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Contract not found")
		case errors.Is(err, service.ErrNoPdf):
			errorResponse(c, http.StatusNotFound, "NO_PDF", "Contract has no stored PDF")
		default:
			errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": url}})
}

// DeleteContract handles DELETE /api/contracts/:id
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	id, ok := contractIDFrom(c)
	if !ok {
		return
	}

	err := h.contractService.DeleteContract(c.Request.Context(), service.GetContractRequest{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Contract not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
