package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

type reviewRepository struct {
	BaseRepository
}

func NewReviewRepository(base BaseRepository) repository.ReviewRepository {
	return &reviewRepository{base}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	review.ID = uuid.New()
	review.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, clinic_id, patient_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, review.ID, review.ClinicID, review.PatientID, review.Rating, review.Comment, review.CreatedAt)
		if err != nil {
			return mapError("review", "create", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE clinics c
			SET rating = agg.avg_rating, review_count = agg.cnt
			FROM (
				SELECT AVG(rating)::numeric(3, 2) AS avg_rating, COUNT(*) AS cnt
				FROM reviews WHERE clinic_id = $1
			) agg
			WHERE c.id = $1
		`, review.ClinicID)
		if err != nil {
			return fmt.Errorf("failed to refresh clinic rating: %w", err)
		}
		return nil
	})
}

func (r *reviewRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, limit int) ([]*model.Review, error) {
	reviews := []*model.Review{}
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT id, clinic_id, patient_id, rating, comment, created_at
		FROM reviews
		WHERE clinic_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
