package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContractStatus represents the lifecycle status of a contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusTrial     ContractStatus = "TRIAL"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// BillingCycle represents how often a contract bills
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

// ParseBillingCycle parses a billing cycle from extracted text.
// Matching is case-insensitive; unknown values are an error so callers
// can treat them as missing rather than persisting garbage.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MONTHLY":
		return BillingCycleMonthly, nil
	case "YEARLY", "ANNUAL", "ANNUALLY":
		return BillingCycleYearly, nil
	default:
		return "", fmt.Errorf("unknown billing cycle: %q", s)
	}
}

// Contract represents a contract entity.
// A contract is created in DRAFT status at upload time with a placeholder
// start date; extraction results and later manual edits mutate it in place.
// Status transitions (cancel, renew) are user-driven and independent of
// the extraction pipeline.
type Contract struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	ClientID     *uuid.UUID     `json:"client_id,omitempty"`
	Status       ContractStatus `json:"status"`
	PlanName     *string        `json:"plan_name,omitempty"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	BillingCycle *BillingCycle  `json:"billing_cycle,omitempty"`
	AutoRenew    bool           `json:"auto_renew"`
	PdfURL       *string        `json:"pdf_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
