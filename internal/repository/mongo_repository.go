package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskdesk/internal/model"
)

// MongoRepository stores one document per task, keyed by the task id.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ TaskStore = (*MongoRepository)(nil)

// NewMongoRepository connects to uri and uses database.collection.
func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to mongo: %v", ErrBackendUnavailable, err)
	}
	return &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Create inserts a new task document
func (r *MongoRepository) Create(ctx context.Context, task *model.Task) error {
	ensureID(task)
	if _, err := r.collection.InsertOne(ctx, NewRecord(*task)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: task %s already exists", ErrWrite, task.ID)
		}
		return r.wrap(ErrWrite, err, "creating task %s", task.ID)
	}
	return nil
}

// List finds tasks, pushing the completed predicate down to the query
func (r *MongoRepository) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	q := bson.M{}
	if filter.Completed != nil {
		q["completada"] = *filter.Completed
	}

	cursor, err := r.collection.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "creada", Value: 1}}))
	if err != nil {
		return nil, r.wrap(ErrRead, err, "listing tasks")
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, r.wrap(ErrRead, err, "decoding tasks")
	}
	return decodeRecords(records), nil
}

// Get retrieves a task by its ID
func (r *MongoRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	var rec Record
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, r.wrap(ErrRead, err, "getting task %s", id)
	}
	task, err := rec.Task()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return &task, nil
}

// Update overwrites the editable fields of an existing task
func (r *MongoRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	rec := NewRecord(*task)
	return r.set(ctx, task.ID, bson.M{
		"titulo":      rec.Titulo,
		"descripcion": rec.Descripcion,
		"fecha":       rec.Fecha,
		"importancia": rec.Importancia,
		"completada":  rec.Completada,
		"actualizada": rec.Actualizada,
	})
}

// UpdateStatus sets the completed flag of a task
func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, completed bool) error {
	return r.set(ctx, id, bson.M{
		"completada":  completed,
		"actualizada": timestamp(time.Now()),
	})
}

func (r *MongoRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return r.wrap(ErrWrite, err, "updating task %s", id)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task document. Unknown ids are ignored.
func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return r.wrap(ErrWrite, err, "deleting task %s", id)
	}
	return nil
}

// Probe pings the primary
func (r *MongoRepository) Probe(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: mongo ping failed: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) wrap(kind, err error, format string, args ...any) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		kind = ErrBackendUnavailable
	}
	return backendErr(kind, err, format, args...)
}
