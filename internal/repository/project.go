package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

type projectDTO struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"clientId"`
	Status     string     `json:"status"`
	FixedPrice flexNumber `json:"fixedPrice"`
	HourlyRate flexNumber `json:"hourlyRate"`
	TotalHours flexNumber `json:"totalHours"`
	StartDate  flexTime   `json:"startDate"`
	EndDate    flexTime   `json:"endDate"`
	CreatedAt  flexTime   `json:"createdAt"`
}

func (d projectDTO) toModel(loc *time.Location) model.Project {
	return model.Project{
		ID:         parseID(d.ID),
		ClientID:   parseID(d.ClientID),
		Status:     model.ProjectStatus(normalizeStatus(d.Status)),
		FixedPrice: d.FixedPrice.optional(),
		HourlyRate: d.HourlyRate.optional(),
		TotalHours: d.TotalHours.orZero(),
		StartDate:  d.StartDate.in(loc),
		EndDate:    d.EndDate.in(loc),
		CreatedAt:  d.CreatedAt.in(loc),
	}
}

type ProjectRepository struct {
	collection
}

func NewProjectRepository(remote *RemoteClient, endpoint string, location *time.Location, logger *logrus.Logger) *ProjectRepository {
	return &ProjectRepository{collection: newCollection(remote, endpoint, location, logger)}
}

func (r *ProjectRepository) GetAll(ctx context.Context) ([]model.Project, error) {
	return r.fetch(ctx, r.endpoint)
}

func (r *ProjectRepository) GetByClient(ctx context.Context, clientID uuid.UUID) ([]model.Project, error) {
	return r.fetch(ctx, r.byClientPath(clientID))
}

// GetOverdue возвращает проекты с истекшим сроком
func (r *ProjectRepository) GetOverdue(ctx context.Context) ([]model.Project, error) {
	return r.fetch(ctx, r.path("overdue"))
}

func (r *ProjectRepository) fetch(ctx context.Context, endpoint string) ([]model.Project, error) {
	items, err := FetchCollection[projectDTO](ctx, r.remote, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить проекты: %w", err)
	}
	projects := make([]model.Project, 0, len(items))
	for _, item := range items {
		projects = append(projects, item.toModel(r.location))
	}
	return projects, nil
}
