package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

type clientDTO struct {
	ID             string   `json:"id"`
	CompanyName    string   `json:"companyName"`
	Company        string   `json:"company"`
	ContactName    string   `json:"contactName"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Status         string   `json:"status"`
	ClientCategory string   `json:"clientCategory"`
	CreatedAt      flexTime `json:"createdAt"`
	UpdatedAt      flexTime `json:"updatedAt"`
}

func (d clientDTO) toModel(loc *time.Location) model.Client {
	company := strings.TrimSpace(d.CompanyName)
	if company == "" {
		company = strings.TrimSpace(d.Company)
	}
	contact := strings.TrimSpace(d.ContactName)
	if contact == "" {
		contact = strings.TrimSpace(d.Name)
	}
	return model.Client{
		ID:             parseID(d.ID),
		CompanyName:    company,
		ContactName:    contact,
		Email:          strings.TrimSpace(d.Email),
		Phone:          strings.TrimSpace(d.Phone),
		Status:         normalizeStatus(d.Status),
		ClientCategory: normalizeStatus(d.ClientCategory),
		CreatedAt:      d.CreatedAt.in(loc),
		UpdatedAt:      d.UpdatedAt.in(loc),
	}
}

type ClientRepository struct {
	collection
}

func NewClientRepository(remote *RemoteClient, endpoint string, location *time.Location, logger *logrus.Logger) *ClientRepository {
	return &ClientRepository{collection: newCollection(remote, endpoint, location, logger)}
}

// GetRecent возвращает последних клиентов пользователя
func (r *ClientRepository) GetRecent(ctx context.Context, limit int) ([]model.Client, error) {
	items, err := FetchCollection[clientDTO](ctx, r.remote, r.path("recent"), limitParams(limit))
	if err != nil {
		return nil, fmt.Errorf("не удалось получить недавних клиентов: %w", err)
	}
	clients := make([]model.Client, 0, len(items))
	for _, item := range items {
		clients = append(clients, item.toModel(r.location))
	}
	return clients, nil
}
