package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoiceapp-backend/analysis"
	"invoiceapp-backend/models"
	"invoiceapp-backend/repository"
	"invoiceapp-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memContractStore struct {
	contracts map[uuid.UUID]*models.Contract
}

func (m *memContractStore) Create(ctx context.Context, c *models.Contract) error {
	c.ID = uuid.New()
	m.contracts[c.ID] = c
	return nil
}

func (m *memContractStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Contract, error) {
	c, ok := m.contracts[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrContractNotFound
	}
	return c, nil
}

func (m *memContractStore) Update(ctx context.Context, c *models.Contract) error {
	m.contracts[c.ID] = c
	return nil
}

func (m *memContractStore) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ContractStatus) error {
	if c, ok := m.contracts[id]; ok {
		c.Status = status
	}
	return nil
}

func (m *memContractStore) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ContractStatus, limit, offset int) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range m.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContractStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	delete(m.contracts, id)
	return nil
}

type memClientStore struct {
	clients []*models.Client
}

func (m *memClientStore) Create(ctx context.Context, c *models.Client) error {
	c.ID = uuid.New()
	m.clients = append(m.clients, c)
	return nil
}

func (m *memClientStore) FindByName(ctx context.Context, userID uuid.UUID, name string) (*models.Client, error) {
	for _, c := range m.clients {
		if c.UserID == userID && c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrClientNotFound
}

type memStorage struct{}

func (memStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) (string, error) {
	return "https://bucket.test/" + key, nil
}

func (memStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (memStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://bucket.test/signed/" + key, nil
}

func (memStorage) Delete(ctx context.Context, key string) error { return nil }

type stubAnalyzer struct {
	blocks []analysis.DocumentBlock
	err    error
}

func (s stubAnalyzer) Analyze(ctx context.Context, document []byte) ([]analysis.DocumentBlock, error) {
	return s.blocks, s.err
}

func newTestRouter(analyzer analysis.Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewContractService(
		service.WithContractStore(&memContractStore{contracts: make(map[uuid.UUID]*models.Contract)}),
		service.WithClientStore(&memClientStore{}),
		service.WithStorage(memStorage{}),
		service.WithAnalyzer(analyzer),
	)
	h := NewContractHandler(svc)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/contracts/upload", h.UploadContract)
	api.GET("/contracts/:id", h.GetContract)
	return r
}

func multipartUpload(t *testing.T, userID string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if userID != "" {
		if err := w.WriteField("user_id", userID); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := w.CreateFormFile("file", "contract.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("%PDF-1.4 test"))
	w.Close()
	return body, w.FormDataContentType()
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		ContractID    string   `json:"contract_id"`
		PdfURL        string   `json:"pdf_url"`
		PlanName      *string  `json:"plan_name"`
		MissingFields []string `json:"missing_fields"`
	} `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestUploadContractHappyPath(t *testing.T) {
	router := newTestRouter(stubAnalyzer{})

	body, contentType := multipartUpload(t, uuid.NewString())
	req := httptest.NewRequest("POST", "/api/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("Expected success envelope")
	}
	if resp.Data.PdfURL == "" {
		t.Error("Expected pdf_url in response")
	}
	// Sparse extraction is a 201 with gaps, not an error.
	if len(resp.Data.MissingFields) == 0 {
		t.Error("Expected missing_fields for empty analysis response")
	}
}

func TestUploadContractMissingUserID(t *testing.T) {
	router := newTestRouter(stubAnalyzer{})

	body, contentType := multipartUpload(t, "")
	req := httptest.NewRequest("POST", "/api/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var resp envelope
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error.Code != "MISSING_USER_ID" {
		t.Errorf("Expected MISSING_USER_ID, got %s", resp.Error.Code)
	}
}

func TestUploadContractMissingFile(t *testing.T) {
	router := newTestRouter(stubAnalyzer{})

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("user_id", uuid.NewString())
	w.Close()

	req := httptest.NewRequest("POST", "/api/contracts/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var resp envelope
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error.Code != "MISSING_FILE" {
		t.Errorf("Expected MISSING_FILE, got %s", resp.Error.Code)
	}
}

func TestUploadContractExtractionFailureMapped(t *testing.T) {
	router := newTestRouter(stubAnalyzer{err: &analysis.ExtractionError{Err: errors.New("throttled")}})

	body, contentType := multipartUpload(t, uuid.NewString())
	req := httptest.NewRequest("POST", "/api/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	var resp envelope
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error.Code != "EXTRACTION_FAILED" {
		t.Errorf("Expected EXTRACTION_FAILED, got %s", resp.Error.Code)
	}
}

func TestGetContractNotFound(t *testing.T) {
	router := newTestRouter(stubAnalyzer{})

	req := httptest.NewRequest("GET", "/api/contracts/"+uuid.NewString()+"?user_id="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}
