package command

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/google/uuid"
)

// Wire defaults for omitted parameters.
const (
	DefaultLinearSpeed  = 0.5
	DefaultAngularSpeed = 0.8
)

// Message is the wire form of a command request.
//
//	{"command": "move", "params": {"distance": 1.0, "linear_speed": 0.5}}
type Message struct {
	ID      string             `json:"id,omitempty"`
	Command string             `json:"command"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// DecodeMessage parses a JSON message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

// Encode returns the JSON form of m.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// ParseLine parses console syntax such as
//
//	move distance=1 linear_speed=0.5
//	turn angle=-1.57 id=3f1c...
//
// into a Message. Quoting follows shell rules.
func ParseLine(line string) (Message, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return Message{}, fmt.Errorf("split %q: %w", line, err)
	}
	if len(fields) == 0 {
		return Message{}, fmt.Errorf("empty command: %w", ErrInvalidParam)
	}

	m := Message{Command: strings.ToLower(fields[0]), Params: map[string]float64{}}
	for _, f := range fields[1:] {
		key, val, ok := strings.Cut(f, "=")
		if !ok {
			return Message{}, fmt.Errorf("argument %q is not key=value: %w", f, ErrInvalidParam)
		}
		if key == "id" {
			m.ID = val
			continue
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return Message{}, fmt.Errorf("argument %q: %w", f, ErrInvalidParam)
		}
		m.Params[key] = v
	}
	return m, nil
}

// FromMessage builds the command a message describes. Wire commands always
// carry their variant's default priority; unknown params are ignored.
func FromMessage(m Message, gains Gains) (Command, error) {
	var opts []Option
	if m.ID != "" {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", m.ID, ErrInvalidParam)
		}
		opts = append(opts, WithID(id))
	}

	switch m.Command {
	case "move":
		speed := param(m.Params, "linear_speed", DefaultLinearSpeed)
		d, ok := m.Params["distance"]
		if !ok {
			return NewMoveContinuous(speed, gains.Move, opts...)
		}
		if d < 0 {
			speed, d = -math.Abs(speed), -d
		}
		return NewMove(d, speed, gains.Move, opts...)
	case "turn":
		speed := param(m.Params, "angular_speed", DefaultAngularSpeed)
		a, ok := m.Params["angle"]
		if !ok {
			return NewTurnContinuous(speed, gains.Turn, opts...)
		}
		return NewTurn(a, speed, gains.Turn, opts...)
	case "stop":
		return NewStop(param(m.Params, "duration", 0), gains.Stop, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", m.Command, ErrUnknownCommand)
	}
}

// ToMessage returns the wire form that rebuilds c.
func ToMessage(c Command) Message {
	m := Message{ID: c.ID().String(), Command: c.Kind().String(), Params: map[string]float64{}}
	switch c := c.(type) {
	case *Move:
		m.Params["linear_speed"] = c.Speed()
		if d, ok := c.Distance(); ok {
			m.Params["distance"] = d
		}
	case *Turn:
		m.Params["angular_speed"] = c.Speed()
		if a, ok := c.Angle(); ok {
			m.Params["angle"] = a
		}
	case *Stop:
		m.Params["duration"] = c.Duration()
	}
	return m
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
