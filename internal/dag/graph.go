package dag

import (
	"errors"
	"log/slog"

	"github.com/tidwall/gjson"
)

type (
	// EditorGraph is the graph submitted by the visual editor
	EditorGraph struct {
		Config      gjson.Result
		Tasks       []*TaskNode
		Connections []*Edge
	}

	// TaskNode is one node of the editor graph
	TaskNode struct {
		ID       string
		TaskName string
		Type     gjson.Result
		Library  gjson.Result
		Required []*ParamValue
		Optional []*ParamValue
	}

	// ParamValue is a parameter value entered in the editor, with the type
	// string reported for its parameter
	ParamValue struct {
		Value gjson.Result
		Name  string
		Type  string
	}

	// Edge connects two nodes by their ids
	Edge struct {
		From string
		To   string
	}
)

const defaultParamType = "str"

var ErrInvalidGraph = errors.New("graph must be a JSON object")

// ParseGraph reads an editor graph. Only the document itself must be a
// JSON object; missing or mistyped members are treated as empty
func ParseGraph(data []byte) (*EditorGraph, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidGraph
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, ErrInvalidGraph
	}

	g := &EditorGraph{
		Tasks:       []*TaskNode{},
		Connections: []*Edge{},
	}
	if cfg := doc.Get("dagConfig"); cfg.IsObject() {
		g.Config = cfg
	}
	for _, t := range array(doc.Get("tasks")) {
		if t.IsObject() {
			g.Tasks = append(g.Tasks, parseTask(t))
		}
	}
	for _, c := range array(doc.Get("connections")) {
		if !c.IsObject() {
			continue
		}
		g.Connections = append(g.Connections, &Edge{
			From: text(c.Get("from")),
			To:   text(c.Get("to")),
		})
	}
	return g, nil
}

func parseTask(t gjson.Result) *TaskNode {
	params := t.Get("operatorParams")
	return &TaskNode{
		ID:       text(t.Get("id")),
		TaskName: text(t.Get("taskName")),
		Type:     t.Get("type"),
		Library:  t.Get("providerTypes"),
		Required: parseParams(params.Get("params_without_defaults")),
		Optional: parseParams(params.Get("params_with_defaults")),
	}
}

func parseParams(obj gjson.Result) []*ParamValue {
	var res []*ParamValue
	if !obj.IsObject() {
		return res
	}
	obj.ForEach(func(key, info gjson.Result) bool {
		if !info.IsObject() {
			slog.Warn("Ignoring malformed parameter",
				slog.String("param", key.String()))
			return true
		}
		typ := defaultParamType
		if t := info.Get("type"); t.Exists() {
			typ = t.String()
			if t.Type == gjson.Null {
				typ = "None"
			}
		}
		res = append(res, &ParamValue{
			Name:  key.String(),
			Value: info.Get("value"),
			Type:  typ,
		})
		return true
	})
	return res
}

// TaskID returns the node's display name, or its id when it has none
func (n *TaskNode) TaskID() string {
	if n.TaskName != "" {
		return n.TaskName
	}
	return n.ID
}

// Params merges the required and optional parameter values in that order.
// A name present in both keeps its first position and takes the optional
// value. Values that are null or absent are dropped
func (n *TaskNode) Params() []*ParamValue {
	var res []*ParamValue
	index := map[string]int{}
	for _, group := range [][]*ParamValue{n.Required, n.Optional} {
		for _, p := range group {
			if i, ok := index[p.Name]; ok {
				res[i] = p
				continue
			}
			index[p.Name] = len(res)
			res = append(res, p)
		}
	}

	kept := res[:0]
	for _, p := range res {
		if p.Value.Exists() && p.Value.Type != gjson.Null {
			kept = append(kept, p)
		}
	}
	return kept
}

func array(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}
