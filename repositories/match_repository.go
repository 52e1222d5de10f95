package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchTeamInvalid        = errors.New("match team conflict or invalid")
	ErrMatchGroupInvalid       = errors.New("match group conflict or invalid")
	ErrMatchBracketUIDConflict = errors.New("bracket match uid already exists")
	ErrGameNumberConflict      = errors.New("game number already recorded for match")
)

type MatchFilter struct {
	GroupID      *int
	Round        *models.KnockoutRound
	Status       *models.MatchStatus
	KnockoutOnly bool
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateParticipants(ctx context.Context, exec SQLExecutor, matchID int, homeTeamID, awayTeamID *int) error
	ReplaceGames(ctx context.Context, exec SQLExecutor, matchID int, games []models.Game) error
	LinkNextMatches(ctx context.Context, exec SQLExecutor) error
	DeleteKnockout(ctx context.Context, exec SQLExecutor) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

var matchConstraints = map[string]error{
	"matches_group_id_fkey":     ErrMatchGroupInvalid,
	"matches_home_team_id_fkey": ErrMatchTeamInvalid,
	"matches_away_team_id_fkey": ErrMatchTeamInvalid,
	"matches_bracket_uid_key":   ErrMatchBracketUIDConflict,
	"games_match_id_number_key": ErrGameNumberConflict,
}

const matchColumns = `
	id, group_id, home_team_id, away_team_id, format, status, home_games_won, away_games_won,
	scheduled_at, round, slot, bracket_uid, next_match_uid, next_match_slot,
	loser_next_match_uid, loser_next_match_slot, next_match_id, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var round sql.NullString
	err := row.Scan(
		&m.ID, &m.GroupID, &m.HomeTeamID, &m.AwayTeamID, &m.Format, &m.Status,
		&m.HomeGamesWon, &m.AwayGamesWon, &m.ScheduledAt, &round, &m.Slot,
		&m.BracketUID, &m.NextMatchUID, &m.NextMatchSlot,
		&m.LoserNextMatchUID, &m.LoserNextMatchSlot, &m.NextMatchID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if round.Valid {
		kr := models.KnockoutRound(round.String)
		m.Round = &kr
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(group_id, home_team_id, away_team_id, format, status, home_games_won, away_games_won,
			 scheduled_at, round, slot, bracket_uid, next_match_uid, next_match_slot,
			 loser_next_match_uid, loser_next_match_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	var round *string
	if match.Round != nil {
		s := string(*match.Round)
		round = &s
	}
	err := executor.QueryRowContext(ctx, query,
		match.GroupID, match.HomeTeamID, match.AwayTeamID, match.Format, match.Status,
		match.HomeGamesWon, match.AwayGamesWon, match.ScheduledAt, round, match.Slot,
		match.BracketUID, match.NextMatchUID, match.NextMatchSlot,
		match.LoserNextMatchUID, match.LoserNextMatchSlot,
	).Scan(&match.ID, &match.CreatedAt)
	return mapPQError(err, matchConstraints)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	match, err := scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}

	games, err := r.listGames(ctx, executor, []int{id})
	if err != nil {
		return nil, err
	}
	match.Games = games[id]
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1 = 1`)
	args := []interface{}{}
	placeholder := func() string {
		return "$" + strconv.Itoa(len(args))
	}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		queryBuilder.WriteString(" AND group_id = " + placeholder())
	}
	if filter.Round != nil {
		args = append(args, string(*filter.Round))
		queryBuilder.WriteString(" AND round = " + placeholder())
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		queryBuilder.WriteString(" AND status = " + placeholder())
	}
	if filter.KnockoutOnly {
		queryBuilder.WriteString(" AND group_id IS NULL")
	}
	queryBuilder.WriteString(" ORDER BY group_id ASC NULLS LAST, slot ASC, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	ids := make([]int, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}

	if len(ids) == 0 {
		return matches, nil
	}
	games, err := r.listGames(ctx, executor, ids)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].Games = games[matches[i].ID]
	}
	return matches, nil
}

func (r *postgresMatchRepository) listGames(ctx context.Context, executor SQLExecutor, matchIDs []int) (map[int][]models.Game, error) {
	rows, err := executor.QueryContext(ctx, `
		SELECT id, match_id, number, home_score, away_score, status
		FROM games
		WHERE match_id = ANY($1)
		ORDER BY match_id ASC, number ASC`, pq.Array(matchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make(map[int][]models.Game)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.MatchID, &g.Number, &g.HomeScore, &g.AwayScore, &g.Status); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games[g.MatchID] = append(games[g.MatchID], g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE matches SET status = $1, home_games_won = $2, away_games_won = $3
		WHERE id = $4`,
		match.Status, match.HomeGamesWon, match.AwayGamesWon, match.ID)
	if err != nil {
		return fmt.Errorf("UpdateResult: failed to execute query for match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateParticipants(ctx context.Context, exec SQLExecutor, matchID int, homeTeamID, awayTeamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET home_team_id = $1, away_team_id = $2 WHERE id = $3`,
		homeTeamID, awayTeamID, matchID)
	if err != nil {
		return fmt.Errorf("UpdateParticipants: failed to execute query for match %d: %w", matchID, mapPQError(err, matchConstraints))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ReplaceGames swaps the match's game list for games. Numbers are assigned
// 1..n in slice order.
func (r *postgresMatchRepository) ReplaceGames(ctx context.Context, exec SQLExecutor, matchID int, games []models.Game) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM games WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("ReplaceGames: failed to clear games of match %d: %w", matchID, err)
	}
	for i := range games {
		g := &games[i]
		g.MatchID = matchID
		g.Number = i + 1
		err := executor.QueryRowContext(ctx, `
			INSERT INTO games (match_id, number, home_score, away_score, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			g.MatchID, g.Number, g.HomeScore, g.AwayScore, g.Status,
		).Scan(&g.ID)
		if err != nil {
			return fmt.Errorf("ReplaceGames: game %d of match %d: %w", g.Number, matchID, mapPQError(err, matchConstraints))
		}
	}
	return nil
}

// LinkNextMatches resolves uid forward-links into next_match_id once every
// match of a bracket has been inserted.
func (r *postgresMatchRepository) LinkNextMatches(ctx context.Context, exec SQLExecutor) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `
		UPDATE matches m SET next_match_id = n.id
		FROM matches n
		WHERE m.next_match_uid = n.bracket_uid AND m.next_match_id IS DISTINCT FROM n.id`)
	if err != nil {
		return fmt.Errorf("LinkNextMatches: %w", err)
	}
	return nil
}

// DeleteKnockout removes every knockout match; games cascade.
func (r *postgresMatchRepository) DeleteKnockout(ctx context.Context, exec SQLExecutor) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE group_id IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("DeleteKnockout: %w", err)
	}
	return result.RowsAffected()
}
