package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"taskdesk/internal/model"
)

// BlobRepository keeps every task in a single JSON document stored in a
// JetStream Object Store bucket. Each mutation reads the whole document,
// changes it and writes it back.
type BlobRepository struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	store  jetstream.ObjectStore
	bucket string
	object string

	// serialises read-modify-write cycles within this process
	mu sync.Mutex
}

var _ TaskStore = (*BlobRepository)(nil)

// NewBlobRepository connects to NATS and opens (or creates) the bucket.
func NewBlobRepository(ctx context.Context, natsURL, bucket, object string) (*BlobRepository, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to NATS at %s: %v", ErrBackendUnavailable, natsURL, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: creating JetStream context: %v", ErrBackendUnavailable, err)
	}

	r := &BlobRepository{conn: conn, js: js, bucket: bucket, object: object}
	if err := r.init(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return r, nil
}

func (r *BlobRepository) init(ctx context.Context) error {
	store, err := r.js.ObjectStore(ctx, r.bucket)
	if err == nil {
		r.store = store
		return nil
	}

	store, err = r.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      r.bucket,
		Description: "Task documents",
	})
	if err != nil {
		return fmt.Errorf("%w: creating object store bucket %s: %v", ErrBackendUnavailable, r.bucket, err)
	}
	r.store = store
	return nil
}

// load reads the document. A missing object is an empty task list.
func (r *BlobRepository) load(ctx context.Context) ([]Record, error) {
	data, err := r.store.GetBytes(ctx, r.object)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return []Record{}, nil
		}
		return nil, backendErr(ErrRead, err, "reading %s/%s", r.bucket, r.object)
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decoding %s/%s: %v", ErrRead, r.bucket, r.object, err)
	}
	return records, nil
}

func (r *BlobRepository) save(ctx context.Context, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding tasks: %v", ErrWrite, err)
	}
	if _, err := r.store.PutBytes(ctx, r.object, data); err != nil {
		return backendErr(ErrWrite, err, "writing %s/%s", r.bucket, r.object)
	}
	return nil
}

// Create appends a task to the document
func (r *BlobRepository) Create(ctx context.Context, task *model.Task) error {
	ensureID(task)

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(records, func(rec Record) bool { return rec.ID == task.ID }) {
		return fmt.Errorf("%w: task %s already exists", ErrWrite, task.ID)
	}
	return r.save(ctx, append(records, NewRecord(*task)))
}

// List returns the tasks of the document in stored order
func (r *BlobRepository) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	r.mu.Lock()
	records, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return filterList(decodeRecords(records), filter), nil
}

// Get retrieves a task by its ID
func (r *BlobRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	records, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(records, func(rec Record) bool { return rec.ID == id })
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	task, err := records[i].Task()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return &task, nil
}

// Update overwrites the editable fields of an existing task
func (r *BlobRepository) Update(ctx context.Context, task *model.Task) error {
	return r.mutate(ctx, task.ID, func(rec *Record) {
		task.UpdatedAt = time.Now().UTC()
		next := NewRecord(*task)
		next.Creada = rec.Creada
		*rec = next
	})
}

// UpdateStatus sets the completed flag of a task
func (r *BlobRepository) UpdateStatus(ctx context.Context, id string, completed bool) error {
	return r.mutate(ctx, id, func(rec *Record) {
		rec.Completada = completed
		rec.Actualizada = timestamp(time.Now())
	})
}

func (r *BlobRepository) mutate(ctx context.Context, id string, fn func(rec *Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(records, func(rec Record) bool { return rec.ID == id })
	if i < 0 {
		return ErrTaskNotFound
	}
	fn(&records[i])
	return r.save(ctx, records)
}

// Delete removes a task from the document. Unknown ids leave it untouched.
func (r *BlobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(records, func(rec Record) bool { return rec.ID == id })
	if len(kept) == len(records) {
		return nil
	}
	return r.save(ctx, kept)
}

// Probe checks the NATS connection and the bucket status
func (r *BlobRepository) Probe(ctx context.Context) error {
	if !r.conn.IsConnected() {
		return fmt.Errorf("%w: NATS connection is %s", ErrBackendUnavailable, r.conn.Status())
	}
	if _, err := r.store.Status(ctx); err != nil {
		return fmt.Errorf("%w: object store %s: %v", ErrBackendUnavailable, r.bucket, err)
	}
	return nil
}

func (r *BlobRepository) Close() error {
	r.conn.Close()
	return nil
}
