package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

type reportRepository struct {
	BaseRepository
}

func NewReportRepository(base BaseRepository) repository.ReportRepository {
	return &reportRepository{base}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	report.ID = uuid.New()
	report.CreatedAt = time.Now()
	if report.Status == "" {
		report.Status = "open"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, clinic_id, reporter_email, reason, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, report.ID, report.ClinicID, report.ReporterEmail, report.Reason, report.Details, report.Status, report.CreatedAt)
	return mapError("report", "create", err)
}
