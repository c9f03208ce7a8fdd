package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"taskdesk/internal/model"
)

const (
	dateLayout = "2006-01-02"
	// timestampLayout is fixed width so stored timestamps sort as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
	// parseLayout also accepts the shorter RFC 3339 forms of older records.
	parseLayout = time.RFC3339Nano
)

// Record is the flat persisted shape of a task, shared by every backend.
type Record struct {
	ID          string `json:"id" bson:"_id" gorm:"column:id;primaryKey"`
	Titulo      string `json:"titulo" bson:"titulo" gorm:"column:titulo;size:100;not null"`
	Descripcion string `json:"descripcion" bson:"descripcion" gorm:"column:descripcion;size:500"`
	Fecha       string `json:"fecha" bson:"fecha" gorm:"column:fecha;size:10;not null"`
	Importancia string `json:"importancia" bson:"importancia" gorm:"column:importancia;size:16;not null"`
	Completada  bool   `json:"completada" bson:"completada" gorm:"column:completada;not null;index"`
	Creada      string `json:"creada" bson:"creada" gorm:"column:creada;not null"`
	Actualizada string `json:"actualizada,omitempty" bson:"actualizada,omitempty" gorm:"column:actualizada"`
}

// TableName places relational rows in the tareas table.
func (Record) TableName() string {
	return "tareas"
}

// NewRecord converts a task into its persisted form.
func NewRecord(t model.Task) Record {
	r := Record{
		ID:          t.ID,
		Titulo:      t.Title,
		Descripcion: t.Description,
		Fecha:       t.DueDate.Format(dateLayout),
		Importancia: t.Importance.Label(),
		Completada:  t.Completed,
		Creada:      t.CreatedAt.UTC().Format(timestampLayout),
	}
	if !t.UpdatedAt.IsZero() {
		r.Actualizada = t.UpdatedAt.UTC().Format(timestampLayout)
	}
	return r
}

// Task converts a persisted record back into a task. It fails on malformed
// dates or an unknown importance label.
func (r Record) Task() (model.Task, error) {
	due, err := time.Parse(dateLayout, r.Fecha)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: bad fecha %q: %w", r.ID, r.Fecha, err)
	}
	created, err := time.Parse(parseLayout, r.Creada)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: bad creada %q: %w", r.ID, r.Creada, err)
	}
	importance, err := model.ParseImportance(r.Importancia)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w %q", r.ID, err, r.Importancia)
	}

	updated := created
	if r.Actualizada != "" {
		updated, err = time.Parse(parseLayout, r.Actualizada)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: bad actualizada %q: %w", r.ID, r.Actualizada, err)
		}
	}

	return model.Task{
		ID:          r.ID,
		Title:       r.Titulo,
		Description: r.Descripcion,
		DueDate:     due,
		Importance:  importance,
		Completed:   r.Completada,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// Fields flattens the record into string fields for hash-based stores.
func (r Record) Fields() map[string]any {
	f := map[string]any{
		"id":          r.ID,
		"titulo":      r.Titulo,
		"descripcion": r.Descripcion,
		"fecha":       r.Fecha,
		"importancia": r.Importancia,
		"completada":  strconv.FormatBool(r.Completada),
		"creada":      r.Creada,
	}
	if r.Actualizada != "" {
		f["actualizada"] = r.Actualizada
	}
	return f
}

// RecordFromFields is the inverse of Fields.
func RecordFromFields(f map[string]string) (Record, error) {
	completed := false
	if v := f["completada"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Record{}, fmt.Errorf("task %s: bad completada %q: %w", f["id"], v, err)
		}
		completed = b
	}
	return Record{
		ID:          f["id"],
		Titulo:      f["titulo"],
		Descripcion: f["descripcion"],
		Fecha:       f["fecha"],
		Importancia: f["importancia"],
		Completada:  completed,
		Creada:      f["creada"],
		Actualizada: f["actualizada"],
	}, nil
}

func ensureID(t *model.Task) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
