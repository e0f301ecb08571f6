package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

const draftColumns = `
	id, clinic_id, basic_info, services, doctors, facilities, hours, gallery,
	location, pricing, status, submitted_at, updated_at`

type draftRepository struct {
	BaseRepository
}

func NewDraftRepository(base BaseRepository) repository.DraftRepository {
	return &draftRepository{base}
}

func (r *draftRepository) GetByClinic(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	var draft model.ClinicProfileDraft
	err := r.db.GetContext(ctx, &draft,
		`SELECT `+draftColumns+` FROM clinic_profile_drafts WHERE clinic_id = $1`, clinicID)
	if err != nil {
		return nil, mapError("draft", "get", err)
	}
	return &draft, nil
}

func (r *draftRepository) Ensure(ctx context.Context, clinicID uuid.UUID) (*model.ClinicProfileDraft, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clinic_profile_drafts (id, clinic_id, status, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (clinic_id) DO NOTHING
	`, uuid.New(), clinicID, model.DraftEditing)
	if err != nil {
		return nil, mapError("draft", "create", err)
	}
	return r.GetByClinic(ctx, clinicID)
}

func (r *draftRepository) Save(ctx context.Context, clinicID uuid.UUID, cols []patch.Column) error {
	set, args := setClause(cols, 4)
	if set != "" {
		set += ", "
	}
	query := `
		UPDATE clinic_profile_drafts
		SET ` + set + `status = $2, updated_at = NOW()
		WHERE clinic_id = $1 AND status <> $3
	`
	args = append([]interface{}{clinicID, model.DraftEditing, model.DraftPending}, args...)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("draft", "update", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.lockedOrMissing(ctx, clinicID)
	}
	return nil
}

// lockedOrMissing explains why a guarded update touched no row.
func (r *draftRepository) lockedOrMissing(ctx context.Context, clinicID uuid.UUID) error {
	draft, err := r.GetByClinic(ctx, clinicID)
	if err != nil {
		return err
	}
	return apperrors.Conflict(fmt.Sprintf("draft is %s and cannot be changed", draft.Status), nil)
}

func (r *draftRepository) Submit(ctx context.Context, clinicID uuid.UUID, at time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var status model.DraftStatus
		err := tx.GetContext(ctx, &status,
			`SELECT status FROM clinic_profile_drafts WHERE clinic_id = $1 FOR UPDATE`, clinicID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("draft", err)
		}
		if err != nil {
			return fmt.Errorf("failed to lock draft: %w", err)
		}
		if status != model.DraftEditing && status != model.DraftRejected {
			return apperrors.Conflict(fmt.Sprintf("draft is %s and cannot be submitted", status), nil)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE clinic_profile_drafts
			SET status = $2, submitted_at = $3, updated_at = $3
			WHERE clinic_id = $1
		`, clinicID, model.DraftPending, at); err != nil {
			return fmt.Errorf("failed to submit draft: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE clinics
			SET moderation_status = $2, moderation_reason = NULL, updated_at = $3
			WHERE id = $1
		`, clinicID, model.ModerationPending, at)
		if err != nil {
			return fmt.Errorf("failed to mark clinic pending: %w", err)
		}
		return rowsAffected(res, "clinic")
	})
}
