// Package model defines the records exchanged with the dashboard REST API.
package model

import "time"

// Client is a tenant of the AI security service.
type Client struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	ClientID     string    `json:"clientId"`
	Description  string    `json:"description,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Status returns "active" or "inactive", the values of the clients screen's
// status filter.
func (c *Client) Status() string {
	if c.IsActive {
		return "active"
	}
	return "inactive"
}

// ClientForm is the payload for creating a client.
type ClientForm struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

// ClientUpdate holds optional client changes. Nil fields mean "don't change".
type ClientUpdate struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
}
