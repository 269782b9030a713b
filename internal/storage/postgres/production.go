package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type productionTaskRepository struct {
	storage *Storage
}

// Enqueue adds a task for the order. A parked task is revived, any other
// existing task is left alone.
func (r *productionTaskRepository) Enqueue(ctx context.Context, orderID int64, externalOrderID string, runAt time.Time) error {
	const query = `INSERT INTO production_tasks (order_id, external_order_id, status, next_attempt_at)
                   VALUES ($1, $2, 'queued', $3)
                   ON CONFLICT (order_id) DO UPDATE
                   SET status='queued', attempts=0, next_attempt_at=EXCLUDED.next_attempt_at, updated_at=NOW()
                   WHERE production_tasks.status='parked'`
	_, err := r.storage.pool.Exec(ctx, query, orderID, externalOrderID, runAt)
	return err
}

// ClaimDue locks due tasks and pushes their next attempt out by lease so that
// concurrent pollers skip them.
func (r *productionTaskRepository) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]model.ProductionTask, error) {
	const selectQuery = `SELECT id, order_id, external_order_id, status, attempts, last_error, next_attempt_at, created_at, updated_at
                         FROM production_tasks
                         WHERE status='queued' AND next_attempt_at <= $1
                         ORDER BY next_attempt_at
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`
	const leaseQuery = `UPDATE production_tasks SET next_attempt_at=$1, updated_at=NOW() WHERE id = ANY($2)`

	var tasks []model.ProductionTask
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, now, limit)
		if err != nil {
			return err
		}
		for rows.Next() {
			var t model.ProductionTask
			if err := rows.Scan(&t.ID, &t.OrderID, &t.ExternalOrderID, &t.Status, &t.Attempts, &t.LastError, &t.NextAttemptAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
				rows.Close()
				return err
			}
			tasks = append(tasks, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(tasks))
		for _, t := range tasks {
			ids = append(ids, t.ID)
		}
		_, err = tx.Exec(ctx, leaseQuery, now.Add(lease), ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *productionTaskRepository) Complete(ctx context.Context, orderID int64) error {
	const query = `UPDATE production_tasks SET status='done', last_error='', updated_at=NOW() WHERE order_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, orderID)
	return err
}

func (r *productionTaskRepository) Reschedule(ctx context.Context, taskID int64, attempts int, next time.Time, lastErr string) error {
	const query = `UPDATE production_tasks
                   SET attempts=$2, next_attempt_at=$3, last_error=$4, updated_at=NOW()
                   WHERE id=$1`
	return r.update(ctx, query, taskID, attempts, next, lastErr)
}

func (r *productionTaskRepository) Park(ctx context.Context, taskID int64, attempts int, lastErr string) error {
	const query = `UPDATE production_tasks
                   SET status='parked', attempts=$2, last_error=$3, updated_at=NOW()
                   WHERE id=$1`
	return r.update(ctx, query, taskID, attempts, lastErr)
}

func (r *productionTaskRepository) update(ctx context.Context, query string, args ...any) error {
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
