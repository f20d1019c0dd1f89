package dag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/kode4food/airdraw/pkg/api"
	"github.com/kode4food/airdraw/pkg/log"
)

type (
	// Workflow is the normalized DAG document. The DAG-level fields hold
	// the JSON submitted by the editor, or their defaults
	Workflow struct {
		DAGID         json.RawMessage `json:"dag_id"`
		Description   json.RawMessage `json:"description"`
		Schedule      json.RawMessage `json:"schedule"`
		StartDate     json.RawMessage `json:"start_date"`
		Catchup       json.RawMessage `json:"catchup"`
		Tags          json.RawMessage `json:"tags"`
		MaxActiveRuns json.RawMessage `json:"max_active_runs"`
		DefaultView   json.RawMessage `json:"default_view"`
		Tasks         []*Task         `json:"tasks"`

		// ID is the dag_id used as the document's storage key
		ID api.DAGID `json:"-"`
	}

	// Task is one normalized task. It encodes as task_id, library, and type,
	// followed by the cast parameters in order and then downstream when it
	// has entries
	Task struct {
		TaskID     api.TaskID
		Library    json.RawMessage
		Type       json.RawMessage
		Params     []*Param
		Downstream []api.TaskID
	}

	// Param is a parameter name and its cast JSON value
	Param struct {
		Name  string
		Value json.RawMessage
	}

	field struct {
		value *json.RawMessage
		key   string
		def   string
	}
)

// Indent is the indentation of stored workflow documents
const Indent = "    "

// Defaults applied to DAG-level fields missing from the editor config
const (
	DefaultDAGID         = "unknown_dag"
	DefaultSchedule      = "@daily"
	DefaultStartDate     = "2025-12-25"
	DefaultMaxActiveRuns = 1
	DefaultView          = "grid"
	DefaultTag           = "airdraw"
)

var (
	ErrDuplicateTaskID = errors.New("duplicate task id")
	ErrMissingTaskID   = errors.New("task has neither a name nor an id")
)

var reservedKeys = []string{"task_id", "library", "type", "downstream"}

// NormalizeJSON parses an editor graph and normalizes it
func NormalizeJSON(data []byte) (*Workflow, error) {
	g, err := ParseGraph(data)
	if err != nil {
		return nil, err
	}
	return Normalize(g)
}

// Normalize converts an editor graph into a Workflow. Tasks keep the node
// order of the graph, and each task's downstream lists the task ids of its
// outgoing edges in edge order, dropping edges to unknown nodes. A node
// without a task id, or repeating an earlier task id, is logged and left
// out. Parameter cast failures are logged and the submitted value is kept
func Normalize(g *EditorGraph) (*Workflow, error) {
	w := &Workflow{Tasks: []*Task{}}
	for _, f := range w.fields() {
		if v := g.Config.Get(f.key); v.Exists() {
			*f.value = json.RawMessage(v.Raw)
			continue
		}
		*f.value = json.RawMessage(f.def)
	}

	w.ID = api.DAGID(DefaultDAGID)
	if v := g.Config.Get("dag_id"); v.Exists() {
		w.ID = api.DAGID(text(v))
	}
	if err := w.ID.Validate(); err != nil {
		return nil, err
	}

	adjacency := map[string][]string{}
	for _, e := range g.Connections {
		if e.From != "" && e.To != "" {
			adjacency[e.From] = append(adjacency[e.From], e.To)
		}
	}

	names := map[string]api.TaskID{}
	for _, n := range g.Tasks {
		names[n.ID] = api.TaskID(n.TaskID())
	}

	seen := map[api.TaskID]bool{}
	for _, n := range g.Tasks {
		t, err := normalizeTask(w.ID, n)
		if err != nil {
			slog.Warn("Skipping task",
				log.DAGID(w.ID),
				slog.String("type", n.Type.String()),
				log.Error(err))
			continue
		}
		if seen[t.TaskID] {
			slog.Warn("Skipping task",
				log.DAGID(w.ID),
				slog.String("task_id", string(t.TaskID)),
				slog.String("node_id", n.ID),
				log.Error(ErrDuplicateTaskID))
			continue
		}
		seen[t.TaskID] = true

		for _, to := range adjacency[n.ID] {
			if name, ok := names[to]; ok {
				t.Downstream = append(t.Downstream, name)
			}
		}
		w.Tasks = append(w.Tasks, t)
	}
	return w, nil
}

func normalizeTask(id api.DAGID, n *TaskNode) (*Task, error) {
	t := &Task{
		TaskID:  api.TaskID(n.TaskID()),
		Library: rawOrNull(n.Library),
		Type:    rawOrNull(n.Type),
		Params:  []*Param{},
	}
	if t.TaskID == "" {
		return nil, ErrMissingTaskID
	}

	for _, p := range n.Params() {
		if slices.Contains(reservedKeys, p.Name) {
			slog.Warn("Ignoring reserved parameter name",
				log.DAGID(id),
				slog.String("task_id", string(t.TaskID)),
				slog.String("param", p.Name))
			continue
		}
		value, err := Cast(p.Value, p.Type)
		if err != nil {
			slog.Warn("Failed to cast parameter",
				log.DAGID(id),
				slog.String("task_id", string(t.TaskID)),
				slog.String("param", p.Name),
				slog.String("type", p.Type),
				log.Error(err))
			value = json.RawMessage(p.Value.Raw)
		}
		t.Params = append(t.Params, &Param{Name: p.Name, Value: value})
	}
	return t, nil
}

// Param returns the cast value of the named parameter
func (t *Task) Param(name string) (json.RawMessage, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the task with its keys in document order
func (t *Task) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value []byte) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := encodeString(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	id, err := encodeString(string(t.TaskID))
	if err != nil {
		return nil, err
	}
	if err := write("task_id", id); err != nil {
		return nil, err
	}
	if err := write("library", rawOrNullBytes(t.Library)); err != nil {
		return nil, err
	}
	if err := write("type", rawOrNullBytes(t.Type)); err != nil {
		return nil, err
	}
	for _, p := range t.Params {
		if err := write(p.Name, rawOrNullBytes(p.Value)); err != nil {
			return nil, err
		}
	}
	if len(t.Downstream) > 0 {
		ds, err := encodeJSON(t.Downstream)
		if err != nil {
			return nil, err
		}
		if err := write("downstream", ds); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the workflow as a stored document: UTF-8 JSON with
// four-space indentation and no HTML escaping
func (w *Workflow) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (w *Workflow) fields() []field {
	return []field{
		{&w.DAGID, "dag_id", `"` + DefaultDAGID + `"`},
		{&w.Description, "description", `""`},
		{&w.Schedule, "schedule", `"` + DefaultSchedule + `"`},
		{&w.StartDate, "start_date", `"` + DefaultStartDate + `"`},
		{&w.Catchup, "catchup", "false"},
		{&w.Tags, "tags", `["` + DefaultTag + `"]`},
		{&w.MaxActiveRuns, "max_active_runs", fmt.Sprint(DefaultMaxActiveRuns)},
		{&w.DefaultView, "default_view", `"` + DefaultView + `"`},
	}
}

func encodeString(s string) (json.RawMessage, error) {
	return encodeJSON(s)
}

func encodeJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func rawOrNull(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}

func rawOrNullBytes(r json.RawMessage) []byte {
	if len(r) == 0 {
		return []byte("null")
	}
	return r
}
