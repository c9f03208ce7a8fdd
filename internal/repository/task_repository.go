package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// TaskRepository stores one row per task in the tareas table.
type TaskRepository struct {
	db *gorm.DB
}

var _ TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Migrate creates the tareas table when it is missing.
func (r *TaskRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("%w: migrating tareas: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	ensureID(task)
	rec := NewRecord(*task)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return backendErr(ErrWrite, err, "creating task %s", task.ID)
	}
	return nil
}

// List retrieves tasks, pushing the completed predicate down to SQL
func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	var records []Record
	q := r.db.WithContext(ctx).Order("creada")
	if filter.Completed != nil {
		q = q.Where("completada = ?", *filter.Completed)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, backendErr(ErrRead, err, "listing tasks")
	}
	return decodeRecords(records), nil
}

// Get retrieves a task by its ID
func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	var rec Record
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, backendErr(ErrRead, result.Error, "getting task %s", id)
	}
	task, err := rec.Task()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return &task, nil
}

// Update overwrites the editable fields of an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	rec := NewRecord(*task)
	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"titulo":      rec.Titulo,
			"descripcion": rec.Descripcion,
			"fecha":       rec.Fecha,
			"importancia": rec.Importancia,
			"completada":  rec.Completada,
			"actualizada": rec.Actualizada,
		})
	if result.Error != nil {
		return backendErr(ErrWrite, result.Error, "updating task %s", task.ID)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdateStatus sets the completed flag of a task
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, completed bool) error {
	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"completada":  completed,
			"actualizada": timestamp(time.Now()),
		})
	if result.Error != nil {
		return backendErr(ErrWrite, result.Error, "updating status of task %s", id)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID. Missing rows are not an error.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error; err != nil {
		return backendErr(ErrWrite, err, "deleting task %s", id)
	}
	return nil
}

// Probe pings the underlying connection pool
func (r *TaskRepository) Probe(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: database ping failed: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (r *TaskRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// decodeRecords converts persisted records, skipping the ones that cannot be parsed.
func decodeRecords(records []Record) []model.Task {
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		t, err := rec.Task()
		if err != nil {
			log.Printf("⚠️  Skipping malformed record: %v", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}
