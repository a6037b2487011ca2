package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LabelSeparator joins list values (classes, tags, polygon points) in a single cell.
const LabelSeparator = ";"

var errNotSingle = errors.New("expected a single value")

// unwrapSingleton Decode a JSON value, unwrapping a one element array to its element.
// An empty array and null both decode to nil.
func unwrapSingleton(b []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	if list, ok := v.([]interface{}); ok {
		switch len(list) {
		case 0:
			return nil, nil
		case 1:
			return list[0], nil
		default:
			return nil, errNotSingle
		}
	}
	return v, nil
}

// FormatNumber Format a number in its shortest decimal form, 1 for 1.0 and 0.5 for 0.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Text is a string field sent either as a bare value or as a single-element list.
// Valid is false when the field was absent or null.
type Text struct {
	Value string
	Valid bool
}

// NewText Create a valid Text
func NewText(s string) Text {
	return Text{Value: s, Valid: true}
}

func (t *Text) UnmarshalJSON(b []byte) error {
	v, err := unwrapSingleton(b)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = Text{}
	case string:
		*t = NewText(x)
	case float64:
		*t = NewText(FormatNumber(x))
	case bool:
		*t = NewText(strconv.FormatBool(x))
	default:
		return fmt.Errorf("cannot use %T as text", v)
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Number is a numeric field sent as a number, a numeric string, or a single-element list.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber Create a valid Number
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// ParseNumber Parse a stored cell. An empty cell is an invalid (absent) number.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q", s)
	}
	return NewNumber(v), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	v, err := unwrapSingleton(b)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*n = Number{}
	case float64:
		*n = NewNumber(x)
	case string:
		parsed, err := ParseNumber(x)
		if err != nil {
			return err
		}
		*n = parsed
	default:
		return fmt.Errorf("cannot use %T as number", v)
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// String Return the cell representation, empty when absent.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return FormatNumber(n.Value)
}

// Labels is an ordered set of non-empty class labels or tags.
// "a;b", ["a;b"] and ["a", "b"] all decode to the same Labels.
// A nil Labels means the field was not sent.
type Labels []string

// NewLabels Build Labels from values that may themselves be ";" joined.
// Empty tokens and duplicates are dropped, first occurrence order is kept.
func NewLabels(values ...string) Labels {
	labels := Labels{}
	seen := make(map[string]bool)
	for _, value := range values {
		for _, token := range strings.Split(value, LabelSeparator) {
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			labels = append(labels, token)
		}
	}
	return labels
}

// ParseLabels Parse a stored ";" joined cell
func ParseLabels(cell string) Labels {
	return NewLabels(cell)
}

func (l *Labels) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = NewLabels(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("labels must be a string or a list of strings: %w", err)
	}
	*l = NewLabels(list...)
	return nil
}

// String Return the ";" joined cell
func (l Labels) String() string {
	return strings.Join(l, LabelSeparator)
}

// Contains reports whether label is in l.
func (l Labels) Contains(label string) bool {
	for _, existing := range l {
		if existing == label {
			return true
		}
	}
	return false
}

// Diff Return the labels of l missing from old, and the labels of old missing from l.
func (l Labels) Diff(old Labels) (added []string, removed []string) {
	for _, label := range l {
		if !old.Contains(label) {
			added = append(added, label)
		}
	}
	for _, label := range old {
		if !l.Contains(label) {
			removed = append(removed, label)
		}
	}
	return added, removed
}
