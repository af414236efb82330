package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID             uuid.UUID  `json:"id"`
	CompanyName    string     `json:"company_name"`
	ContactName    string     `json:"contact_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Status         string     `json:"status"`
	ClientCategory string     `json:"client_category"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// DisplayName возвращает имя клиента для отображения на дашборде
func (c Client) DisplayName() string {
	switch {
	case c.ContactName != "":
		return c.ContactName
	case c.CompanyName != "":
		return c.CompanyName
	default:
		return "Unnamed Client"
	}
}
