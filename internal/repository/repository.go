package repository

import (
	"context"

	"github.com/mr1hm/crime-dashboard/internal/models"
)

// IncidentSource yields the full incident table in source order.
type IncidentSource interface {
	LoadIncidents(ctx context.Context) ([]models.Incident, error)
}

// IncidentSnapshot is a writable store the import command fills from a source.
type IncidentSnapshot interface {
	IncidentSource
	ReplaceIncidents(ctx context.Context, incidents []models.Incident) error
	Count(ctx context.Context) (int, error)
}
