package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSchemaMismatch reports a payload whose shape does not match the contract
// documented on Raw.
var ErrSchemaMismatch = errors.New("schema mismatch")

// UnknownLocation is used when a session carries no usable location.
const UnknownLocation = "Unknown"

// Raw is one session entry as published under props.pageProps.sessions.
//
// MaxHeadcount and CurrentHeadcount are required; Start, End and Date must be
// ISO-8601 instants (see ParseInstant).
type Raw struct {
	Class            ClassInfo   `json:"class"`
	Trainer          TrainerInfo `json:"trainer"`
	Location         Location    `json:"location"`
	Start            string      `json:"start"`
	End              string      `json:"end"`
	Date             string      `json:"date"`
	MaxHeadcount     *int        `json:"max_headcount"`
	CurrentHeadcount *int        `json:"current_headcount"`
}

// ClassInfo is the class metadata attached to a session
type ClassInfo struct {
	Title      Text `json:"title"`
	Difficulty Text `json:"difficulty"`
	Category   Text `json:"category"`
}

// TrainerInfo is the trainer metadata attached to a session
type TrainerInfo struct {
	FirstName Text `json:"first_name"`
	LastName  Text `json:"last_name"`
	Gender    Text `json:"gender"`
	Position  Text `json:"position"`
}

// Text is a scalar metadata value. The site is not consistent about types, so
// strings, numbers and booleans are all kept as their literal text and null
// becomes the empty string.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("%w: expected scalar, got %s", ErrSchemaMismatch, data)
	}

	*t = Text(data)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// LocationKind tells how a location was published
type LocationKind int

const (
	// LocationAbsent means the field was missing or null
	LocationAbsent LocationKind = iota
	// LocationPlain means the field was a bare label
	LocationPlain
	// LocationStructured means the field was an object with a title
	LocationStructured
)

// Location is either a bare label or an object carrying the label in its
// title field. The variant is resolved once, when the payload is decoded.
type Location struct {
	Kind  LocationKind
	Label string
}

// PlainLocation builds a bare-label location
func PlainLocation(label string) Location {
	return Location{Kind: LocationPlain, Label: label}
}

// StructuredLocation builds an object location
func StructuredLocation(label string) Location {
	return Location{Kind: LocationStructured, Label: label}
}

// UnmarshalJSON implements json.Unmarshaler
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = Location{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = PlainLocation(s)
	case data[0] == '{':
		var obj struct {
			Title *Text `json:"title"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("%w: location: %v", ErrSchemaMismatch, err)
		}
		if obj.Title == nil {
			*l = StructuredLocation(UnknownLocation)
			return nil
		}
		*l = StructuredLocation(string(*obj.Title))
	default:
		return fmt.Errorf("%w: location must be a string or an object, got %s", ErrSchemaMismatch, data)
	}
	return nil
}

// Name returns the display label, falling back to UnknownLocation
func (l Location) Name() string {
	if l.Kind == LocationAbsent {
		return UnknownLocation
	}
	return l.Label
}
