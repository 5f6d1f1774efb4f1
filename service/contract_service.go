package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoiceapp-backend/analysis"
	"invoiceapp-backend/models"
	"invoiceapp-backend/repository"
	"invoiceapp-backend/storage"

	"github.com/google/uuid"
)

// ContractStore is the persistence surface the contract service needs
type ContractStore interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Contract, error)
	Update(ctx context.Context, contract *models.Contract) error
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ContractStatus) error
	ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ContractStatus, limit, offset int) ([]*models.Contract, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ClientStore is the client lookup/create surface the contract service needs
type ClientStore interface {
	Create(ctx context.Context, client *models.Client) error
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*models.Client, error)
}

// ContractService handles contract upload, extraction and lifecycle logic
type ContractService struct {
	contracts ContractStore
	clients   ClientStore
	storage   storage.Storage
	analyzer  analysis.Analyzer
	signedTTL time.Duration
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// WithContractStore sets the contract store
func WithContractStore(s ContractStore) ContractServiceOption {
	return func(svc *ContractService) {
		svc.contracts = s
	}
}

// WithClientStore sets the client store
func WithClientStore(s ClientStore) ContractServiceOption {
	return func(svc *ContractService) {
		svc.clients = s
	}
}

// WithStorage sets the object storage
func WithStorage(s storage.Storage) ContractServiceOption {
	return func(svc *ContractService) {
		svc.storage = s
	}
}

// WithAnalyzer sets the document analyzer
func WithAnalyzer(a analysis.Analyzer) ContractServiceOption {
	return func(svc *ContractService) {
		svc.analyzer = a
	}
}

// WithSignedURLTTL sets how long signed PDF links stay valid
func WithSignedURLTTL(ttl time.Duration) ContractServiceOption {
	return func(svc *ContractService) {
		svc.signedTTL = ttl
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	svc := &ContractService{
		signedTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrUploadFailed     = errors.New("pdf upload failed")
	ErrExtractionFailed = errors.New("field extraction failed")
	ErrSaveFailed       = errors.New("failed to save contract")
	ErrNoPdf            = errors.New("contract has no pdf")
)

// dateLayouts are tried in order when parsing extracted date text.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}

// present reports whether an extracted field carries usable text.
// The analysis pipeline resolves absent values to empty strings, so
// empty counts as missing.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// ProcessUploadRequest represents a contract PDF upload
type ProcessUploadRequest struct {
	UserID   uuid.UUID
	Filename string
	PDF      []byte
}

// ProcessUploadResult represents the outcome of processing an upload.
// MissingFields lists the schema fields extraction could not confidently
// populate; callers use it to prompt the user for manual completion.
type ProcessUploadResult struct {
	Contract      *models.Contract
	ClientName    *string
	PdfURL        string
	MissingFields []string
}

// pdfKey derives the object-store key for a contract's PDF
func pdfKey(id uuid.UUID) string {
	return fmt.Sprintf("contracts/%s.pdf", id)
}

// ProcessUpload runs the full upload pipeline: create a draft record,
// store the PDF, extract form fields, reconcile them into the record,
// resolve the client, and persist. Extraction gaps are reported through
// MissingFields rather than failing the upload; only infrastructure
// faults (upload, analysis API, persistence) abort the run. A failed
// stage leaves earlier work in place — a stranded DRAFT record is the
// caller's signal to retry or inspect.
func (s *ContractService) ProcessUpload(ctx context.Context, req ProcessUploadRequest) (*ProcessUploadResult, error) {
	// Stage 1: create the draft record. Start date gets a placeholder of
	// now until extraction supplies a real one.
	contract := &models.Contract{
		UserID:    req.UserID,
		Status:    models.ContractStatusDraft,
		StartDate: time.Now().UTC(),
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	// Stage 2: store the PDF under a key derived from the record id.
	key := pdfKey(contract.ID)
	pdfURL, err := s.storage.Upload(ctx, key, bytes.NewReader(req.PDF), int64(len(req.PDF)), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	contract.PdfURL = &pdfURL
	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	// Stage 3: analyze the document. An API failure aborts; a sparse or
	// empty block list is a legitimate result and falls through to
	// reconciliation.
	blocks, err := s.analyzer.Analyze(ctx, req.PDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	data := analysis.ExtractContractData(blocks)

	// Stage 4: reconcile extracted fields into the record.
	missing := s.reconcileFields(contract, data)

	// Stage 5: resolve the client by exact name for this user, creating
	// one if absent.
	var clientName *string
	if present(data.ClientName) {
		name := strings.TrimSpace(*data.ClientName)
		client, err := s.findOrCreateClient(ctx, req.UserID, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		contract.ClientID = &client.ID
		clientName = &name
	} else {
		missing = append(missing, "clientName")
	}

	// Stage 6: persist the reconciled record.
	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return &ProcessUploadResult{
		Contract:      contract,
		ClientName:    clientName,
		PdfURL:        pdfURL,
		MissingFields: missing,
	}, nil
}

// reconcileFields assigns extracted values onto the record and returns
// the names of fields that could not be populated. Start date is
// required: absent or unparseable keeps the placeholder and flags it.
// End date is optional (contracts may be open-ended): only a present but
// unparseable value is flagged. AutoRenew is always a concrete bool and
// is never flagged.
func (s *ContractService) reconcileFields(contract *models.Contract, data analysis.ExtractedContractData) []string {
	missing := []string{}

	if present(data.PlanName) {
		name := strings.TrimSpace(*data.PlanName)
		contract.PlanName = &name
	} else {
		missing = append(missing, "planName")
	}

	if present(data.StartDate) {
		if t, err := parseDate(*data.StartDate); err == nil {
			contract.StartDate = t
		} else {
			missing = append(missing, "startDate")
		}
	} else {
		missing = append(missing, "startDate")
	}

	if present(data.EndDate) {
		if t, err := parseDate(*data.EndDate); err == nil {
			contract.EndDate = &t
		} else {
			missing = append(missing, "endDate")
		}
	}

	if present(data.BillingCycle) {
		if cycle, err := models.ParseBillingCycle(*data.BillingCycle); err == nil {
			contract.BillingCycle = &cycle
		} else {
			missing = append(missing, "billingCycle")
		}
	} else {
		missing = append(missing, "billingCycle")
	}

	contract.AutoRenew = data.AutoRenew

	return missing
}

func (s *ContractService) findOrCreateClient(ctx context.Context, userID uuid.UUID, name string) (*models.Client, error) {
	client, err := s.clients.FindByName(ctx, userID, name)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrClientNotFound) {
		return nil, err
	}

	client = &models.Client{
		UserID: userID,
		Name:   name,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetContractRequest represents a request to get a contract
type GetContractRequest struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// GetContractResult represents the result of getting a contract
type GetContractResult struct {
	Contract *models.Contract
}

// GetContract retrieves a contract scoped to its owner
func (s *ContractService) GetContract(ctx context.Context, req GetContractRequest) (*GetContractResult, error) {
	contract, err := s.contracts.GetByID(ctx, req.ID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &GetContractResult{Contract: contract}, nil
}

// ListContractsRequest represents a request to list contracts
type ListContractsRequest struct {
	UserID uuid.UUID
	Status *models.ContractStatus
	Limit  int
	Offset int
}

// ListContractsResult represents the result of listing contracts
type ListContractsResult struct {
	Contracts []*models.Contract
}

// ListContracts lists contracts for a user
func (s *ContractService) ListContracts(ctx context.Context, req ListContractsRequest) (*ListContractsResult, error) {
	contracts, err := s.contracts.ListByUserID(ctx, req.UserID, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return &ListContractsResult{Contracts: contracts}, nil
}

// UpdateContractRequest represents a manual edit of a contract
type UpdateContractRequest struct {
	Contract *models.Contract
}

// UpdateContractResult represents the result of updating a contract
type UpdateContractResult struct {
	Contract *models.Contract
}

// UpdateContract persists a manual edit, e.g. completion of fields the
// extraction pipeline reported missing
func (s *ContractService) UpdateContract(ctx context.Context, req UpdateContractRequest) (*UpdateContractResult, error) {
	if err := s.contracts.Update(ctx, req.Contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return &UpdateContractResult{Contract: req.Contract}, nil
}

// CancelContract marks a contract as cancelled
func (s *ContractService) CancelContract(ctx context.Context, req GetContractRequest) (*GetContractResult, error) {
	contract, err := s.contracts.GetByID(ctx, req.ID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	contract.Status = models.ContractStatusCancelled
	if err := s.contracts.UpdateStatus(ctx, contract.ID, req.UserID, contract.Status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return &GetContractResult{Contract: contract}, nil
}

// RenewContract reactivates a contract with a fresh start date and an
// open end date
func (s *ContractService) RenewContract(ctx context.Context, req GetContractRequest) (*GetContractResult, error) {
	contract, err := s.contracts.GetByID(ctx, req.ID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	contract.Status = models.ContractStatusActive
	contract.StartDate = time.Now().UTC()
	contract.EndDate = nil
	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return &GetContractResult{Contract: contract}, nil
}

// DeleteContract removes a contract and its stored PDF
func (s *ContractService) DeleteContract(ctx context.Context, req GetContractRequest) error {
	contract, err := s.contracts.GetByID(ctx, req.ID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return ErrContractNotFound
		}
		return err
	}

	if contract.PdfURL != nil {
		// Best effort; a dangling object is preferable to a dangling row.
		_ = s.storage.Delete(ctx, pdfKey(contract.ID))
	}

	return s.contracts.Delete(ctx, req.ID, req.UserID)
}

// ContractPdfURL returns a time-limited download URL for the contract's PDF
func (s *ContractService) ContractPdfURL(ctx context.Context, req GetContractRequest) (string, error) {
	contract, err := s.contracts.GetByID(ctx, req.ID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return "", ErrContractNotFound
		}
		return "", err
	}

	if contract.PdfURL == nil {
		return "", ErrNoPdf
	}

	return s.storage.SignedURL(ctx, pdfKey(contract.ID), s.signedTTL)
}
