package domain

import "time"

// Client represents a borrower. A client owns many loans; a loan belongs to
// exactly one client for its lifetime.
type Client struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Email     string
	Phone     string
}

// Validate checks the client's contact details.
func (c *Client) Validate() error {
	if err := ValidateClientName(c.Name); err != nil {
		return err
	}
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	return ValidatePhone(c.Phone)
}
