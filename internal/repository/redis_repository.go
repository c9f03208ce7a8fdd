package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdesk/internal/model"
)

// RedisRepository stores each task as a hash under <prefix>task:<id> and
// keeps the set of ids under <prefix>tasks.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

var _ TaskStore = (*RedisRepository)(nil)

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) taskKey(id string) string {
	return r.prefix + "task:" + id
}

func (r *RedisRepository) indexKey() string {
	return r.prefix + "tasks"
}

// Create adds a new task hash and indexes its id. An existing id is rejected.
func (r *RedisRepository) Create(ctx context.Context, task *model.Task) error {
	ensureID(task)
	rec := NewRecord(*task)
	key := r.taskKey(task.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errTaskExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, rec.Fields())
			pipe.SAdd(ctx, r.indexKey(), task.ID)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errTaskExists), errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: task %s already exists", ErrWrite, task.ID)
	}
	return backendErr(ErrWrite, err, "creating task %s", task.ID)
}

// List loads every indexed task. The completed filter is applied after the fetch.
func (r *RedisRepository) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, backendErr(ErrRead, err, "listing task ids")
	}
	if len(ids) == 0 {
		return []model.Task{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.taskKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, backendErr(ErrRead, err, "loading tasks")
	}

	records := make([]Record, 0, len(cmds))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// index entry without a hash, left behind by a concurrent delete
			continue
		}
		rec, err := RecordFromFields(fields)
		if err != nil {
			log.Printf("⚠️  Skipping malformed record %s: %v", ids[i], err)
			continue
		}
		records = append(records, rec)
	}
	tasks := decodeRecords(records)
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return filterList(tasks, filter), nil
}

// Get retrieves a task by its ID
func (r *RedisRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	fields, err := r.client.HGetAll(ctx, r.taskKey(id)).Result()
	if err != nil {
		return nil, backendErr(ErrRead, err, "getting task %s", id)
	}
	if len(fields) == 0 {
		return nil, ErrTaskNotFound
	}
	rec, err := RecordFromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	task, err := rec.Task()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return &task, nil
}

// Update overwrites the editable fields of an existing task
func (r *RedisRepository) Update(ctx context.Context, task *model.Task) error {
	current, err := r.Get(ctx, task.ID)
	if err != nil {
		return err
	}
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = time.Now().UTC()

	if err := r.client.HSet(ctx, r.taskKey(task.ID), NewRecord(*task).Fields()).Err(); err != nil {
		return backendErr(ErrWrite, err, "updating task %s", task.ID)
	}
	return nil
}

// UpdateStatus sets the completed flag of a task
func (r *RedisRepository) UpdateStatus(ctx context.Context, id string, completed bool) error {
	n, err := r.client.Exists(ctx, r.taskKey(id)).Result()
	if err != nil {
		return backendErr(ErrRead, err, "checking task %s", id)
	}
	if n == 0 {
		return ErrTaskNotFound
	}

	err = r.client.HSet(ctx, r.taskKey(id),
		"completada", strconv.FormatBool(completed),
		"actualizada", timestamp(time.Now()),
	).Err()
	if err != nil {
		return backendErr(ErrWrite, err, "updating status of task %s", id)
	}
	return nil
}

// Delete removes a task and its index entry. Unknown ids are ignored.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.taskKey(id))
		pipe.SRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return backendErr(ErrWrite, err, "deleting task %s", id)
	}
	return nil
}

// Probe checks if the Redis connection is healthy
func (r *RedisRepository) Probe(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping failed: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Close closes the Redis client connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
