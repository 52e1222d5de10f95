package services

import (
	"context"
	"fmt"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/repositories"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/stage"
	"golang.org/x/sync/errgroup"
)

type snapshotLoader struct {
	groupRepo repositories.GroupRepository
	matchRepo repositories.MatchRepository
}

// load reads every group and match. Outside a transaction the two reads run
// in parallel on separate pool connections; a transaction owns one
// connection, so inside one they run in sequence.
func (l snapshotLoader) load(ctx context.Context, exec repositories.SQLExecutor) (stage.Snapshot, error) {
	var snap stage.Snapshot

	loadGroups := func(ctx context.Context) error {
		groups, err := l.groupRepo.List(ctx, exec)
		if err != nil {
			return fmt.Errorf("failed to load groups: %w", err)
		}
		snap.Groups = groups
		return nil
	}
	loadMatches := func(ctx context.Context) error {
		matches, err := l.matchRepo.List(ctx, exec, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		snap.Matches = matches
		return nil
	}

	if exec != nil {
		if err := loadGroups(ctx); err != nil {
			return stage.Snapshot{}, err
		}
		if err := loadMatches(ctx); err != nil {
			return stage.Snapshot{}, err
		}
		return snap, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loadGroups(gctx) })
	g.Go(func() error { return loadMatches(gctx) })
	if err := g.Wait(); err != nil {
		return stage.Snapshot{}, err
	}
	return snap, nil
}
