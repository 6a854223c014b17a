package models

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// CardState represents the learning stage of a card. It is derived from the
// card's repetition count and rolling accuracy, never stored separately.
type CardState int

const (
	StateNew       CardState = iota + 1 // Never reviewed.
	StateLearning                       // Early repetitions or recent relapse.
	StateReviewing                      // Established review cycle.
	StateMastered                       // High repetition count and accuracy.
)

var (
	stateNames = [...]string{
		StateNew:       "New",
		StateLearning:  "Learning",
		StateReviewing: "Reviewing",
		StateMastered:  "Mastered",
	}
	stateByName = map[string]CardState{
		"New":       StateNew,
		"Learning":  StateLearning,
		"Reviewing": StateReviewing,
		"Mastered":  StateMastered,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = CardState(0)
	_ encoding.TextMarshaler   = CardState(0)
	_ encoding.TextUnmarshaler = (*CardState)(nil)
)

func (s CardState) isValid() bool {
	return s >= StateNew && s <= StateMastered
}

// String returns the name of the state ("New", "Learning", "Reviewing",
// "Mastered"). For invalid values it returns "CardState(n)".
func (s CardState) String() string {
	if s.isValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("CardState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CardState) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("mnemo: invalid card state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardState) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("mnemo: invalid card state: %q", text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. CardState serializes as a string.
func (s CardState) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *CardState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("mnemo: invalid card state: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}
