package repository

import (
	"context"
	"errors"

	"invoiceapp-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClientNotFound is returned when no client matches a lookup
var ErrClientNotFound = errors.New("client not found")

// ClientRepository handles database operations for clients
type ClientRepository struct {
	db *pgxpool.Pool
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client record
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (
			user_id, name, email, phone, address
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		client.UserID,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)

	return err
}

// GetByID retrieves a client by ID for the owning user
func (r *ClientRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, user_id, name, email, phone, address, created_at, updated_at
		FROM clients
		WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return client, nil
}

// FindByName retrieves a client by exact name for the owning user
func (r *ClientRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, user_id, name, email, phone, address, created_at, updated_at
		FROM clients
		WHERE user_id = $1 AND name = $2
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return client, nil
}

// ListByUserID retrieves all clients for a user
func (r *ClientRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Client, error) {
	query := `
		SELECT id, user_id, name, email, phone, address, created_at, updated_at
		FROM clients
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		err := rows.Scan(
			&client.ID,
			&client.UserID,
			&client.Name,
			&client.Email,
			&client.Phone,
			&client.Address,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, rows.Err()
}

// Delete deletes a client owned by its user
func (r *ClientRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM clients WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}
