package marketplace

import (
	"errors"

	"github.com/google/uuid"

	"github.com/orderdesk/backend/internal/domain/account"
)

// EZManageConfig holds EZManage API connection settings. API tokens are
// account scoped on the marketplace side, so the owning account is part of
// the configuration: every order fetched with this token belongs to it.
type EZManageConfig struct {
	// BaseURL is the API endpoint base, e.g. https://api.ezcater.com
	BaseURL string
	// Token is the account-scoped API token
	Token string
	// AccountID is the local account the token belongs to
	AccountID uuid.UUID
	// AccountRef is the reference code of that account
	AccountRef account.Ref
	// TimeoutSeconds is the per-request timeout
	TimeoutSeconds int
}

// Validate validates the EZManage configuration
func (c *EZManageConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("ezmanage: base URL is required")
	}
	if c.Token == "" {
		return errors.New("ezmanage: API token is required")
	}
	if c.AccountID == uuid.Nil {
		return errors.New("ezmanage: account ID is required")
	}
	if !c.AccountRef.IsValid() {
		return errors.New("ezmanage: account ref is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
