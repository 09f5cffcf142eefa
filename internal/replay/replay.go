// Package replay runs captured input-event traces through an entry state
// machine. Traces are JSON lines, one event per line, validated against an
// embedded schema before anything is applied.
//
// Replay exists for debugging autocorrection behavior: a host captures the
// event stream that produced a bad suggestion context, and the trace is
// replayed offline to inspect every transition.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"entrytrack/internal/entry"
)

// Operation names accepted in traces.
const (
	OpTyped              = "typed"
	OpAcceptedDefault    = "accepted_default"
	OpBackToAccepted     = "back_to_accepted"
	OpAcceptedTyped      = "accepted_typed"
	OpAcceptedSuggestion = "accepted_suggestion"
	OpBackspace          = "backspace"
	OpRestart            = "restart"
	OpReset              = "reset"
)

// schemaJSON validates a single trace event.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "entrytrack trace event",
  "type": "object",
  "properties": {
    "op": {
      "type": "string",
      "enum": [
        "typed", "accepted_default", "back_to_accepted", "accepted_typed",
        "accepted_suggestion", "backspace", "restart", "reset"
      ]
    },
    "char": {"type": "string", "minLength": 1, "maxLength": 1},
    "separator": {"type": "boolean"},
    "x": {"type": "integer"},
    "y": {"type": "integer"},
    "typed": {"type": "string"},
    "actual": {"type": "string"},
    "separator_code": {"type": "string", "maxLength": 1}
  },
  "required": ["op"],
  "additionalProperties": false,
  "allOf": [
    {
      "if": {"properties": {"op": {"const": "typed"}}},
      "then": {"required": ["char"]}
    },
    {
      "if": {"properties": {"op": {"const": "accepted_default"}}},
      "then": {"required": ["typed", "actual"]}
    },
    {
      "if": {"properties": {"op": {"const": "back_to_accepted"}}},
      "then": {"required": ["typed"]}
    },
    {
      "if": {"properties": {"op": {"const": "accepted_typed"}}},
      "then": {"required": ["typed"]}
    },
    {
      "if": {"properties": {"op": {"const": "accepted_suggestion"}}},
      "then": {"required": ["typed", "actual"]}
    }
  ]
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func eventSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("trace-event.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("trace-event.schema.json")
	})
	return schema, schemaErr
}

// Event is one trace line.
type Event struct {
	Op            string `json:"op"`
	Char          string `json:"char,omitempty"`
	Separator     bool   `json:"separator,omitempty"`
	X             int    `json:"x,omitempty"`
	Y             int    `json:"y,omitempty"`
	Typed         string `json:"typed,omitempty"`
	Actual        string `json:"actual,omitempty"`
	SeparatorCode string `json:"separator_code,omitempty"`
}

// Step records one replayed event and the transition it caused.
type Step struct {
	// Index is the 1-based line number in the trace.
	Index int

	// Op is the operation name.
	Op string

	// From and To are the machine states around the event. From == To when
	// the event caused no transition.
	From entry.State
	To   entry.State
}

// Run validates and replays the trace from r through m, returning one Step
// per event. Blank lines and lines starting with '#' are skipped. The first
// invalid line aborts the replay with its line number.
func Run(r io.Reader, m *entry.Machine) ([]Step, error) {
	sch, err := eventSchema()
	if err != nil {
		return nil, err
	}

	var steps []Step
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var raw any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return steps, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		if err := sch.Validate(raw); err != nil {
			return steps, fmt.Errorf("line %d: %w", lineNo, err)
		}

		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return steps, fmt.Errorf("line %d: %w", lineNo, err)
		}

		from := m.Current()
		if err := apply(m, ev); err != nil {
			return steps, fmt.Errorf("line %d: %w", lineNo, err)
		}
		steps = append(steps, Step{
			Index: lineNo,
			Op:    ev.Op,
			From:  from,
			To:    m.Current(),
		})
	}
	if err := scanner.Err(); err != nil {
		return steps, fmt.Errorf("read trace: %w", err)
	}
	return steps, nil
}

// apply dispatches one validated event to the machine.
func apply(m *entry.Machine, ev Event) error {
	switch ev.Op {
	case OpTyped:
		ch, _ := utf8.DecodeRuneInString(ev.Char)
		m.TypedCharacter(ch, ev.Separator, ev.X, ev.Y)
	case OpAcceptedDefault:
		m.AcceptedDefault(ev.Typed, ev.Actual, separatorCode(ev))
	case OpBackToAccepted:
		m.BackToAcceptedDefault(ev.Typed)
	case OpAcceptedTyped:
		m.AcceptedTyped(ev.Typed)
	case OpAcceptedSuggestion:
		m.AcceptedSuggestion(ev.Typed, ev.Actual)
	case OpBackspace:
		m.Backspace()
	case OpRestart:
		m.RestartSuggestions()
	case OpReset:
		m.Reset()
	default:
		// unreachable: the schema constrains op
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	return nil
}

func separatorCode(ev Event) rune {
	if ev.SeparatorCode == "" {
		return ' '
	}
	ch, _ := utf8.DecodeRuneInString(ev.SeparatorCode)
	return ch
}
