package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
)

// Publisher fans events out to websocket subscribers.
type Publisher interface {
	Publish(room, messageType string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) {}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

// handleRepositoryError maps repository errors onto service errors.
func handleRepositoryError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrGroupNotFound),
		errors.Is(err, repositories.ErrTeamNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrStageNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repositories.ErrGroupNameConflict):
		return fmt.Errorf("%s: %w", what, ErrGroupNameConflict)
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return fmt.Errorf("%s: %w", what, ErrTeamNameConflict)
	case errors.Is(err, repositories.ErrMatchTeamInvalid),
		errors.Is(err, repositories.ErrMatchGroupInvalid):
		return fmt.Errorf("%s: %w: %v", what, ErrValidationFailed, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
