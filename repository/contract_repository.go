package repository

import (
	"context"
	"errors"
	"fmt"

	"invoiceapp-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrContractNotFound is returned when no contract matches a lookup
var ErrContractNotFound = errors.New("contract not found")

// ContractRepository handles database operations for contracts.
// Every read and write is scoped to the owning user; there is no
// unscoped access path.
type ContractRepository struct {
	db *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create creates a new contract
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	query := `
		INSERT INTO contracts (
			user_id, client_id, status, plan_name, start_date, end_date,
			billing_cycle, auto_renew, pdf_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		contract.UserID,
		contract.ClientID,
		contract.Status,
		contract.PlanName,
		contract.StartDate,
		contract.EndDate,
		contract.BillingCycle,
		contract.AutoRenew,
		contract.PdfURL,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)

	return err
}

// GetByID retrieves a contract by ID for the owning user
func (r *ContractRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Contract, error) {
	contract := &models.Contract{}
	query := `
		SELECT id, user_id, client_id, status, plan_name, start_date, end_date,
			billing_cycle, auto_renew, pdf_url, created_at, updated_at
		FROM contracts
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&contract.ID,
		&contract.UserID,
		&contract.ClientID,
		&contract.Status,
		&contract.PlanName,
		&contract.StartDate,
		&contract.EndDate,
		&contract.BillingCycle,
		&contract.AutoRenew,
		&contract.PdfURL,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	return contract, nil
}

// Update updates a contract owned by its user
func (r *ContractRepository) Update(ctx context.Context, contract *models.Contract) error {
	query := `
		UPDATE contracts SET
			client_id = $3,
			status = $4,
			plan_name = $5,
			start_date = $6,
			end_date = $7,
			billing_cycle = $8,
			auto_renew = $9,
			pdf_url = $10,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		contract.ID,
		contract.UserID,
		contract.ClientID,
		contract.Status,
		contract.PlanName,
		contract.StartDate,
		contract.EndDate,
		contract.BillingCycle,
		contract.AutoRenew,
		contract.PdfURL,
	).Scan(&contract.UpdatedAt)

	return err
}

// UpdateStatus updates only the status of a contract
func (r *ContractRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ContractStatus) error {
	query := `
		UPDATE contracts SET
			status = $3,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	_, err := r.db.Exec(ctx, query, id, userID, status)
	return err
}

// ListByUserID retrieves all contracts for a user
func (r *ContractRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ContractStatus, limit, offset int) ([]*models.Contract, error) {
	query := `
		SELECT id, user_id, client_id, status, plan_name, start_date, end_date,
			billing_cycle, auto_renew, pdf_url, created_at, updated_at
		FROM contracts
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract := &models.Contract{}
		err := rows.Scan(
			&contract.ID,
			&contract.UserID,
			&contract.ClientID,
			&contract.Status,
			&contract.PlanName,
			&contract.StartDate,
			&contract.EndDate,
			&contract.BillingCycle,
			&contract.AutoRenew,
			&contract.PdfURL,
			&contract.CreatedAt,
			&contract.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}

	return contracts, rows.Err()
}

// Delete deletes a contract owned by its user
func (r *ContractRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM contracts WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}
