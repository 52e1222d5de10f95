package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

var ErrStageNotFound = errors.New("tournament stage record not found")

// StageRepository stores the singleton stage row (id = 1).
type StageRepository interface {
	Get(ctx context.Context, exec SQLExecutor, forUpdate bool) (*models.TournamentStage, error)
	Save(ctx context.Context, exec SQLExecutor, stage *models.TournamentStage) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Get reads the stage row. forUpdate locks it until the surrounding
// transaction ends, which is how stage writers are serialised.
func (r *postgresStageRepository) Get(ctx context.Context, exec SQLExecutor, forUpdate bool) (*models.TournamentStage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT phase, group_stage_completed, knockout_generated, updated_at
		FROM tournament_stage WHERE id = 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s models.TournamentStage
	err := executor.QueryRowContext(ctx, query).Scan(&s.Phase, &s.GroupStageCompleted, &s.KnockoutGenerated, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to read tournament stage: %w", err)
	}
	return &s, nil
}

func (r *postgresStageRepository) Save(ctx context.Context, exec SQLExecutor, stage *models.TournamentStage) error {
	executor := r.getExecutor(exec)
	if stage.UpdatedAt.IsZero() {
		stage.UpdatedAt = time.Now()
	}
	_, err := executor.ExecContext(ctx, `
		INSERT INTO tournament_stage (id, phase, group_stage_completed, knockout_generated, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			phase = EXCLUDED.phase,
			group_stage_completed = EXCLUDED.group_stage_completed,
			knockout_generated = EXCLUDED.knockout_generated,
			updated_at = EXCLUDED.updated_at`,
		stage.Phase, stage.GroupStageCompleted, stage.KnockoutGenerated, stage.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save tournament stage: %w", err)
	}
	return nil
}
