package tracing

import (
	"log"

	"github.com/sarchlab/axiconnect/datarecording"
)

// TaskTable is the table that DBTracer writes into.
const TaskTable = "trace"

// TaskRecord is the row of a finished task.
type TaskRecord struct {
	ID         string
	ParentID   string
	Kind       string
	What       string
	Location   string
	StartCycle uint64
	EndCycle   uint64
}

// DBTracer writes finished tasks into a data recorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
	filter   TaskFilter
}

// NewDBTracer creates a DBTracer and the task table. A nil filter keeps every
// task.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	filter TaskFilter,
) (*DBTracer, error) {
	if err := recorder.CreateTable(TaskTable, TaskRecord{}); err != nil {
		return nil, err
	}

	return &DBTracer{
		recorder: recorder,
		filter:   filter,
	}, nil
}

// StartTask does nothing. Tasks are written when they end.
func (t *DBTracer) StartTask(_ Task) {
	// Do nothing
}

// EndTask writes the task.
func (t *DBTracer) EndTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	err := t.recorder.InsertData(TaskTable, TaskRecord{
		ID:         task.ID,
		ParentID:   task.ParentID,
		Kind:       task.Kind,
		What:       task.What,
		Location:   task.Where,
		StartCycle: task.StartCycle,
		EndCycle:   task.EndCycle,
	})
	if err != nil {
		log.Panic(err)
	}
}
