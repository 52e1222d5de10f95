package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/brackets"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/samber/lo"
)

type CreateGroupInput struct {
	Name      string   `json:"name"`
	TeamNames []string `json:"teams"`
}

type ScheduleInput struct {
	StartAt time.Time     `json:"start_at"`
	Spacing time.Duration `json:"spacing"`
}

type GroupService interface {
	Create(ctx context.Context, input CreateGroupInput) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	// ScheduleRoundRobin creates the missing group matches of a group.
	ScheduleRoundRobin(ctx context.Context, groupID int, input ScheduleInput) ([]models.Match, error)
}

type groupService struct {
	db          *sql.DB
	groupRepo   repositories.GroupRepository
	matchRepo   repositories.MatchRepository
	stageRepo   repositories.StageRepository
	groupFormat models.MatchFormat
	logger      *slog.Logger
	now         func() time.Time
}

func NewGroupService(
	db *sql.DB,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	groupFormat models.MatchFormat,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		db:          db,
		groupRepo:   groupRepo,
		matchRepo:   matchRepo,
		stageRepo:   stageRepo,
		groupFormat: groupFormat,
		logger:      logger.With(slog.String("service", "group")),
		now:         time.Now,
	}
}

func validateCreateGroup(input CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidationFailed)
	}
	names := lo.Map(input.TeamNames, func(n string, _ int) string { return strings.TrimSpace(n) })
	if lo.Contains(names, "") {
		return nil, fmt.Errorf("%w: team names must not be empty", ErrValidationFailed)
	}
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: a group needs at least 2 teams, got %d", ErrValidationFailed, len(names))
	}
	if len(lo.Uniq(names)) != len(names) {
		return nil, fmt.Errorf("%w: team names must be unique", ErrValidationFailed)
	}

	group := &models.Group{Name: name}
	for _, n := range names {
		group.Teams = append(group.Teams, models.Team{Name: n})
	}
	return group, nil
}

func (s *groupService) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	group, err := validateCreateGroup(input)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.requireGroupStage(ctx, tx); err != nil {
			return err
		}
		return handleRepositoryError(s.groupRepo.Create(ctx, tx, group), "create group")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("group created", slog.Int("group_id", group.ID), slog.Int("teams", len(group.Teams)))
	return group, nil
}

func (s *groupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groupRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) ScheduleRoundRobin(ctx context.Context, groupID int, input ScheduleInput) ([]models.Match, error) {
	if input.Spacing < 0 {
		return nil, fmt.Errorf("%w: spacing must not be negative", ErrValidationFailed)
	}
	startAt := input.StartAt
	if startAt.IsZero() {
		startAt = s.now()
	}

	var created []models.Match
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.requireGroupStage(ctx, tx); err != nil {
			return err
		}
		group, err := s.groupRepo.GetByID(ctx, tx, groupID)
		if err != nil {
			return handleRepositoryError(err, fmt.Sprintf("get group %d", groupID))
		}
		existing, err := s.matchRepo.List(ctx, tx, repositories.MatchFilter{GroupID: &groupID})
		if err != nil {
			return fmt.Errorf("failed to load matches of group %d: %w", groupID, err)
		}

		created, err = brackets.RoundRobin(brackets.RoundRobinParams{
			Group:       *group,
			Format:      s.groupFormat,
			ScheduledAt: startAt,
			Spacing:     input.Spacing,
		}, existing)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		for i := range created {
			if err := s.matchRepo.Create(ctx, tx, &created[i]); err != nil {
				return handleRepositoryError(err, "create group match")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("group matches scheduled", slog.Int("group_id", groupID), slog.Int("created", len(created)))
	return created, nil
}

// requireGroupStage locks the stage row and rejects changes to the group
// layout once the knockout has been generated.
func (s *groupService) requireGroupStage(ctx context.Context, tx *sql.Tx) error {
	st, err := s.stageRepo.Get(ctx, tx, true)
	if err != nil {
		return handleRepositoryError(err, "lock stage")
	}
	if st.Phase != models.PhaseGroupStage || st.KnockoutGenerated {
		return fmt.Errorf("%w: groups cannot change after the group stage", ErrResultLocked)
	}
	return nil
}
