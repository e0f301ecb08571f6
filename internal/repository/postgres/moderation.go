package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

const queueColumns = `
	clinic_id, clinic_name, slug, country, city, moderation_status, is_published,
	draft_id, draft_status, submitted_at, draft_updated_at`

type moderationRepository struct {
	BaseRepository
}

func NewModerationRepository(base BaseRepository) repository.ModerationRepository {
	return &moderationRepository{base}
}

// ListQueue reads the moderation_queue view. An empty status lists every row.
func (r *moderationRepository) ListQueue(ctx context.Context, draftStatus model.DraftStatus) ([]*model.ModerationQueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM moderation_queue`
	args := []interface{}{}
	if draftStatus != "" {
		query += ` WHERE draft_status = $1`
		args = append(args, draftStatus)
	}
	query += ` ORDER BY submitted_at ASC NULLS LAST, draft_updated_at DESC`

	items := []*model.ModerationQueueItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return items, nil
}

func (r *moderationRepository) GetQueueItem(ctx context.Context, clinicID uuid.UUID) (*model.ModerationQueueItem, error) {
	var item model.ModerationQueueItem
	err := r.db.GetContext(ctx, &item,
		`SELECT `+queueColumns+` FROM moderation_queue WHERE clinic_id = $1`, clinicID)
	if err != nil {
		return nil, mapError("moderation item", "get", err)
	}
	return &item, nil
}

// PublishFromDraft invokes the backend procedure that promotes the draft and
// flips the clinic to published and approved in one transaction.
func (r *moderationRepository) PublishFromDraft(ctx context.Context, clinicID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `SELECT publish_clinic_from_draft($1)`, clinicID); err != nil {
		return fmt.Errorf("publish_clinic_from_draft: %w", err)
	}
	return nil
}

func (r *moderationRepository) RejectDraft(ctx context.Context, clinicID uuid.UUID, reason string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT reject_clinic_draft($1, $2)`, clinicID, reason); err != nil {
		return fmt.Errorf("reject_clinic_draft: %w", err)
	}
	return nil
}
