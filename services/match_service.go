package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/brackets"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
)

type GameScore struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

type SubmitResultInput struct {
	Games []GameScore `json:"games"`
}

type MatchService interface {
	List(ctx context.Context, filter repositories.MatchFilter) ([]models.Match, error)
	Get(ctx context.Context, matchID int) (*models.Match, error)
	// SubmitResult replaces the games of a match, refreshes the cached group
	// aggregates and then lets the tournament progress if it can.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
}

type matchService struct {
	db         *sql.DB
	groupRepo  repositories.GroupRepository
	matchRepo  repositories.MatchRepository
	stageRepo  repositories.StageRepository
	tournament TournamentService
	hub        Publisher
	logger     *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	tournament TournamentService,
	hub Publisher,
	logger *slog.Logger,
) MatchService {
	if hub == nil {
		hub = nopPublisher{}
	}
	return &matchService{
		db:         db,
		groupRepo:  groupRepo,
		matchRepo:  matchRepo,
		stageRepo:  stageRepo,
		tournament: tournament,
		hub:        hub,
		logger:     logger.With(slog.String("service", "match")),
	}
}

func (s *matchService) List(ctx context.Context, filter repositories.MatchFilter) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) Get(ctx context.Context, matchID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID, false)
	if err != nil {
		return nil, handleRepositoryError(err, fmt.Sprintf("get match %d", matchID))
	}
	return m, nil
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	var match *models.Match
	var groupTeams []models.Team
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		current, err := s.stageRepo.Get(ctx, tx, true)
		if err != nil {
			return handleRepositoryError(err, "lock stage")
		}
		match, err = s.matchRepo.GetByID(ctx, tx, matchID, true)
		if err != nil {
			return handleRepositoryError(err, fmt.Sprintf("get match %d", matchID))
		}
		if err := checkResultEditable(*current, match); err != nil {
			return err
		}
		if err := applyGameScores(match, input.Games); err != nil {
			return err
		}

		if err := s.matchRepo.ReplaceGames(ctx, tx, match.ID, match.Games); err != nil {
			return handleRepositoryError(err, "replace games")
		}
		if err := s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
			return handleRepositoryError(err, "update result")
		}

		if match.GroupID != nil {
			groupTeams, err = s.refreshGroupAggregates(ctx, tx, *match.GroupID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.String("status", string(match.Status)),
		slog.Int("home_games_won", match.HomeGamesWon),
		slog.Int("away_games_won", match.AwayGamesWon),
	)
	s.hub.Publish(brackets.RoomAll, brackets.MessageMatchUpdated, match)
	if groupTeams != nil {
		s.hub.Publish(brackets.RoomStandings, brackets.MessageStandingsUpdated, groupTeams)
	}

	if match.Status == models.MatchStatusCompleted && s.tournament != nil {
		if _, err := s.tournament.Reconcile(ctx); err != nil {
			s.logger.Error("progression after result failed", slog.Int("match_id", match.ID), slog.Any("error", err))
		}
	}
	return match, nil
}

// refreshGroupAggregates rebuilds the cached team statistics of a group from
// its matches.
func (s *matchService) refreshGroupAggregates(ctx context.Context, tx *sql.Tx, groupID int) ([]models.Team, error) {
	group, err := s.groupRepo.GetByID(ctx, tx, groupID)
	if err != nil {
		return nil, handleRepositoryError(err, fmt.Sprintf("get group %d", groupID))
	}
	matches, err := s.matchRepo.List(ctx, tx, repositories.MatchFilter{GroupID: &groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of group %d: %w", groupID, err)
	}
	aggs, err := standings.Aggregate(*group, matches)
	if err != nil {
		return nil, err
	}
	standings.ApplyAggregates(group.Teams, aggs)
	if err := s.groupRepo.UpdateTeamAggregates(ctx, tx, group.Teams); err != nil {
		return nil, handleRepositoryError(err, "update team aggregates")
	}
	return group.Teams, nil
}

// checkResultEditable allows group results only during the group stage and
// knockout results only while their round is being played.
func checkResultEditable(current models.TournamentStage, m *models.Match) error {
	if m.Status == models.MatchStatusCanceled {
		return fmt.Errorf("%w: match %d is canceled", ErrResultLocked, m.ID)
	}
	if m.IsPlaceholder() {
		return fmt.Errorf("%w: match %d has no opponents yet", ErrValidationFailed, m.ID)
	}
	if m.GroupID != nil {
		if current.Phase != models.PhaseGroupStage {
			return fmt.Errorf("%w: group stage is over", ErrResultLocked)
		}
		return nil
	}
	if m.Round == nil || models.PhaseForRound(*m.Round) != current.Phase {
		return fmt.Errorf("%w: match %d is not part of the %s phase", ErrResultLocked, m.ID, current.Phase)
	}
	return nil
}

// applyGameScores replaces the games of m with scores and recounts the match.
// Every game needs a winner, and no game may follow the deciding one.
func applyGameScores(m *models.Match, scores []GameScore) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: at least one game score is required", ErrValidationFailed)
	}
	if len(scores) > int(m.Format) {
		return fmt.Errorf("%w: best-of-%d match cannot have %d games", ErrValidationFailed, m.Format, len(scores))
	}

	need := m.Format.WinsRequired()
	home, away := 0, 0
	games := make([]models.Game, 0, len(scores))
	for i, sc := range scores {
		if home >= need || away >= need {
			return fmt.Errorf("%w: game %d played after the match was decided", ErrValidationFailed, i+1)
		}
		if sc.HomeScore < 0 || sc.AwayScore < 0 {
			return fmt.Errorf("%w: game %d has a negative score", ErrValidationFailed, i+1)
		}
		if sc.HomeScore == sc.AwayScore {
			return fmt.Errorf("%w: game %d has no winner", ErrValidationFailed, i+1)
		}
		if sc.HomeScore > sc.AwayScore {
			home++
		} else {
			away++
		}
		games = append(games, models.Game{
			MatchID:   m.ID,
			Number:    i + 1,
			HomeScore: sc.HomeScore,
			AwayScore: sc.AwayScore,
			Status:    models.GameStatusCompleted,
		})
	}

	m.Games = games
	m.RecountGames()
	return nil
}
