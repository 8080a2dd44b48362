package crm

import "errors"

// NutshellConfig holds Nutshell API connection settings
type NutshellConfig struct {
	// BaseURL is the API endpoint base, e.g. https://app.nutshell.com
	BaseURL string
	// Username is the API username (account email)
	Username string
	// APIKey is the API key paired with the username
	APIKey string
	// TimeoutSeconds is the per-request timeout
	TimeoutSeconds int
}

// Validate validates the Nutshell configuration
func (c *NutshellConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("nutshell: base URL is required")
	}
	if c.Username == "" {
		return errors.New("nutshell: username is required")
	}
	if c.APIKey == "" {
		return errors.New("nutshell: API key is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
