package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/brackets"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/stage"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/storage"
)

// GroupStandings is one group's table as served to clients.
type GroupStandings struct {
	GroupID   int                  `json:"group_id"`
	GroupName string               `json:"group_name"`
	Standings []standings.Standing `json:"standings"`
	Ties      [][]int              `json:"ties,omitempty"`
	Complete  bool                 `json:"complete"`
}

type TournamentService interface {
	Standings(ctx context.Context) ([]GroupStandings, error)
	Qualification(ctx context.Context, res *standings.Resolution) (*standings.Qualification, error)
	Bracket(ctx context.Context) ([]models.Match, error)
	Stage(ctx context.Context) (*models.TournamentStage, error)
	Advance(ctx context.Context, res *standings.Resolution) (*stage.Transition, error)
	// Reconcile applies every transition that is currently possible and
	// returns them. Stopping on an unmet precondition or an ambiguous ranking
	// is not an error.
	Reconcile(ctx context.Context) ([]*stage.Transition, error)
	Reset(ctx context.Context) (*models.TournamentStage, error)
}

type TournamentConfig struct {
	Qualification  standings.Config
	KnockoutFormat models.MatchFormat
	Generator      brackets.BracketGenerator
	// KnockoutDelay offsets the scheduled time of generated knockout matches.
	KnockoutDelay time.Duration
}

type tournamentService struct {
	db        *sql.DB
	groupRepo repositories.GroupRepository
	matchRepo repositories.MatchRepository
	stageRepo repositories.StageRepository
	snapshots snapshotLoader
	hub       Publisher
	archiver  storage.Archiver
	logger    *slog.Logger
	cfg       TournamentConfig
	now       func() time.Time

	// mu serialises stage writers inside this process; the row lock on the
	// stage record serialises them across processes.
	mu sync.Mutex
}

func NewTournamentService(
	db *sql.DB,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	hub Publisher,
	archiver storage.Archiver,
	logger *slog.Logger,
	cfg TournamentConfig,
) TournamentService {
	if hub == nil {
		hub = nopPublisher{}
	}
	if archiver == nil {
		archiver = storage.NopArchiver()
	}
	if cfg.Generator == nil {
		cfg.Generator = brackets.NewKnockoutGenerator(nil)
	}
	return &tournamentService{
		db:        db,
		groupRepo: groupRepo,
		matchRepo: matchRepo,
		stageRepo: stageRepo,
		snapshots: snapshotLoader{groupRepo: groupRepo, matchRepo: matchRepo},
		hub:       hub,
		archiver:  archiver,
		logger:    logger.With(slog.String("service", "tournament")),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *tournamentService) Standings(ctx context.Context) ([]GroupStandings, error) {
	snap, err := s.snapshots.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	return buildGroupStandings(snap)
}

func buildGroupStandings(snap stage.Snapshot) ([]GroupStandings, error) {
	pending := make(map[int]bool)
	for _, m := range snap.Matches {
		if m.GroupID != nil && (m.Status == models.MatchStatusScheduled || m.Status == models.MatchStatusInProgress) {
			pending[*m.GroupID] = true
		}
	}

	out := make([]GroupStandings, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		r, err := standings.RankGroup(g, snap.Matches)
		if err != nil {
			return nil, fmt.Errorf("failed to rank group %d: %w", g.ID, err)
		}
		out = append(out, GroupStandings{
			GroupID:   g.ID,
			GroupName: g.Name,
			Standings: r.Standings,
			Ties:      r.Ties(),
			Complete:  !pending[g.ID],
		})
	}
	return out, nil
}

func (s *tournamentService) Qualification(ctx context.Context, res *standings.Resolution) (*standings.Qualification, error) {
	snap, err := s.snapshots.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	return standings.SelectQualifiers(snap.Groups, snap.Matches, s.cfg.Qualification, res)
}

func (s *tournamentService) Bracket(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{KnockoutOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	return matches, nil
}

func (s *tournamentService) Stage(ctx context.Context) (*models.TournamentStage, error) {
	st, err := s.stageRepo.Get(ctx, nil, false)
	if err != nil {
		return nil, handleRepositoryError(err, "get stage")
	}
	return st, nil
}

func (s *tournamentService) Advance(ctx context.Context, res *standings.Resolution) (*stage.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(ctx, res)
}

func (s *tournamentService) Reconcile(ctx context.Context) ([]*stage.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied []*stage.Transition
	for {
		t, err := s.advanceLocked(ctx, nil)
		if err != nil {
			if errors.Is(err, stage.ErrStalePrecondition) || errors.Is(err, standings.ErrAmbiguousRanking) {
				s.logger.Debug("progression halted", slog.String("reason", err.Error()))
				return applied, nil
			}
			return applied, err
		}
		applied = append(applied, t)
	}
}

func (s *tournamentService) advanceLocked(ctx context.Context, res *standings.Resolution) (*stage.Transition, error) {
	var t *stage.Transition
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		current, err := s.stageRepo.Get(ctx, tx, true)
		if err != nil {
			return handleRepositoryError(err, "lock stage")
		}
		snap, err := s.snapshots.load(ctx, tx)
		if err != nil {
			return err
		}

		now := s.now()
		t, err = stage.Advance(*current, snap, stage.Options{
			Qualification:  s.cfg.Qualification,
			Resolution:     res,
			Generator:      s.cfg.Generator,
			KnockoutFormat: s.cfg.KnockoutFormat,
			ScheduledAt:    now.Add(s.cfg.KnockoutDelay),
			Now:            now,
		})
		if err != nil {
			return err
		}
		return s.persistTransition(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stage advanced",
		slog.String("from", string(t.From)),
		slog.String("to", string(t.To)),
		slog.Int("created_matches", len(t.CreatedMatches)),
		slog.Int("updated_matches", len(t.UpdatedMatches)),
	)
	s.hub.Publish(brackets.RoomBracket, brackets.MessageStageAdvanced, t)
	s.archive(ctx, "stage_advanced", t)
	return t, nil
}

// persistTransition writes the generated and patched matches and the new
// stage record in the caller's transaction.
func (s *tournamentService) persistTransition(ctx context.Context, tx *sql.Tx, t *stage.Transition) error {
	for i := range t.CreatedMatches {
		if err := s.matchRepo.Create(ctx, tx, &t.CreatedMatches[i]); err != nil {
			return handleRepositoryError(err, "create knockout match")
		}
	}
	if len(t.CreatedMatches) > 0 {
		if err := s.matchRepo.LinkNextMatches(ctx, tx); err != nil {
			return err
		}
	}
	for _, m := range t.UpdatedMatches {
		if err := s.matchRepo.UpdateParticipants(ctx, tx, m.ID, m.HomeTeamID, m.AwayTeamID); err != nil {
			return handleRepositoryError(err, fmt.Sprintf("seat participants of match %d", m.ID))
		}
	}
	return s.stageRepo.Save(ctx, tx, &t.State)
}

func (s *tournamentService) Reset(ctx context.Context) (*models.TournamentStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := stage.Reset(s.now())
	var removed int64
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if _, err := s.stageRepo.Get(ctx, tx, true); err != nil {
			return handleRepositoryError(err, "lock stage")
		}
		var err error
		if removed, err = s.matchRepo.DeleteKnockout(ctx, tx); err != nil {
			return err
		}
		return s.stageRepo.Save(ctx, tx, &next)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("tournament stage reset", slog.Int64("knockout_matches_removed", removed))
	s.hub.Publish(brackets.RoomAll, brackets.MessageStageReset, next)
	s.archive(ctx, "stage_reset", next)
	return &next, nil
}

// archive uploads a snapshot; failures are logged and never fail the caller.
func (s *tournamentService) archive(ctx context.Context, kind string, payload interface{}) {
	res, err := s.archiver.Archive(ctx, kind, s.now(), payload)
	if err != nil {
		s.logger.Error("failed to archive snapshot", slog.String("kind", kind), slog.Any("error", err))
		return
	}
	if res != nil {
		s.logger.Info("snapshot archived", slog.String("kind", kind), slog.String("key", res.Key))
	}
}
