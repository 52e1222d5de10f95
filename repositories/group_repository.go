package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrGroupNameConflict = errors.New("group name already exists")
	ErrTeamNameConflict  = errors.New("team name already exists")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Group, error)
	UpdateTeamAggregates(ctx context.Context, exec SQLExecutor, teams []models.Team) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

var groupConstraints = map[string]error{
	"groups_name_key": ErrGroupNameConflict,
	"teams_name_key":  ErrTeamNameConflict,
}

// Create inserts the group and its teams. Call it inside a transaction so a
// failing team insert does not leave an empty group behind.
func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx,
		`INSERT INTO groups (name) VALUES ($1) RETURNING id`, group.Name,
	).Scan(&group.ID)
	if err != nil {
		return mapPQError(err, groupConstraints)
	}

	for i := range group.Teams {
		t := &group.Teams[i]
		t.GroupID = group.ID
		err := executor.QueryRowContext(ctx,
			`INSERT INTO teams (name, group_id) VALUES ($1, $2) RETURNING id`, t.Name, t.GroupID,
		).Scan(&t.ID)
		if err != nil {
			return mapPQError(err, groupConstraints)
		}
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error) {
	executor := r.getExecutor(exec)
	group := &models.Group{}
	err := executor.QueryRowContext(ctx, `SELECT id, name FROM groups WHERE id = $1`, id).Scan(&group.ID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}

	teams, err := r.listTeams(ctx, executor, &id)
	if err != nil {
		return nil, err
	}
	group.Teams = teams
	return group, nil
}

// List returns every group with its teams, both ordered by ID.
func (r *postgresGroupRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Group, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT id, name FROM groups ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	index := make(map[int]int)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}

	teams, err := r.listTeams(ctx, executor, nil)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		if i, ok := index[t.GroupID]; ok {
			groups[i].Teams = append(groups[i].Teams, t)
		}
	}
	return groups, nil
}

func (r *postgresGroupRepository) listTeams(ctx context.Context, executor SQLExecutor, groupID *int) ([]models.Team, error) {
	query := `
		SELECT id, name, group_id, matches_played, wins, losses,
		       games_won, games_lost, points_for, points_against
		FROM teams`
	args := []interface{}{}
	if groupID != nil {
		query += ` WHERE group_id = $1`
		args = append(args, *groupID)
	}
	query += ` ORDER BY group_id ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(
			&t.ID, &t.Name, &t.GroupID, &t.MatchesPlayed, &t.Wins, &t.Losses,
			&t.GamesWon, &t.GamesLost, &t.PointsFor, &t.PointsAgainst,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

// UpdateTeamAggregates overwrites the cached aggregate columns of each team.
func (r *postgresGroupRepository) UpdateTeamAggregates(ctx context.Context, exec SQLExecutor, teams []models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams SET
			matches_played = $1, wins = $2, losses = $3, games_won = $4,
			games_lost = $5, points_for = $6, points_against = $7
		WHERE id = $8`
	for _, t := range teams {
		result, err := executor.ExecContext(ctx, query,
			t.MatchesPlayed, t.Wins, t.Losses, t.GamesWon,
			t.GamesLost, t.PointsFor, t.PointsAgainst, t.ID,
		)
		if err != nil {
			return fmt.Errorf("UpdateTeamAggregates failed for team %d: %w", t.ID, err)
		}
		if err := checkAffectedRows(result, ErrTeamNotFound); err != nil {
			return fmt.Errorf("UpdateTeamAggregates team %d: %w", t.ID, err)
		}
	}
	return nil
}
