package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// completionRepo implements CompletionRepo on the task_completions table.
type completionRepo struct {
	drv *entsql.Driver
}

func (r *completionRepo) Load(ctx context.Context, planKey string) (map[string]bool, error) {
	query, args := builder().
		Select("task_id", "completed").
		From(entsql.Table(completionTable)).
		Where(entsql.EQ("plan_key", planKey)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			id   string
			done bool
		)
		if err := rows.Scan(&id, &done); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out[id] = done
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return out, nil
}

func (r *completionRepo) Set(ctx context.Context, planKey, taskID string, completed bool) error {
	query, args := builder().
		Insert(completionTable).
		Columns("plan_key", "task_id", "completed", "updated_at").
		Values(planKey, taskID, completed, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("plan_key", "task_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("completed")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save completion %s: %w", taskID, err)
	}
	return nil
}

func (r *completionRepo) Clear(ctx context.Context) error {
	query, args := builder().Delete(completionTable).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}
