package models

import (
	"encoding/json"
	"time"
)

// DefaultHistorySize is the number of samples a card history retains.
const DefaultHistorySize = 20

// Sample is a single timestamped measurement in a card history.
type Sample struct {
	Value float64   `json:"value"`
	At    time.Time `json:"at"`
}

// History is a fixed-capacity ring buffer of timestamped samples. Once full,
// pushing a new sample evicts the oldest one, so the "last N" bound is an
// invariant of the type rather than a truncation the caller must remember.
//
// The zero value is usable and defaults to DefaultHistorySize.
type History struct {
	capacity int
	samples  []Sample
	start    int
}

// NewHistory creates a history bounded to the given capacity.
// Non-positive capacities fall back to DefaultHistorySize.
func NewHistory(capacity int) History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return History{capacity: capacity}
}

// Push appends a sample, evicting the oldest when the buffer is full.
func (h *History) Push(value float64, at time.Time) {
	if h.capacity <= 0 {
		h.capacity = DefaultHistorySize
	}
	s := Sample{Value: value, At: at}
	if len(h.samples) < h.capacity {
		h.samples = append(h.samples, s)
		return
	}
	h.samples[h.start] = s
	h.start = (h.start + 1) % h.capacity
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Samples returns the stored samples in chronological order.
func (h *History) Samples() []Sample {
	out := make([]Sample, 0, len(h.samples))
	for i := 0; i < len(h.samples); i++ {
		out = append(out, h.samples[(h.start+i)%len(h.samples)])
	}
	return out
}

// Values returns the sample values in chronological order.
func (h *History) Values() []float64 {
	samples := h.Samples()
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

// Last returns the most recent sample and true, or a zero sample and false
// when the history is empty.
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	idx := h.start - 1
	if idx < 0 {
		idx = len(h.samples) - 1
	}
	if len(h.samples) < h.capacity {
		idx = len(h.samples) - 1
	}
	return h.samples[idx], true
}

// Mean returns the average of the stored values, or 0 for an empty history.
func (h *History) Mean() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range h.samples {
		sum += s.Value
	}
	return sum / float64(len(h.samples))
}

type historyJSON struct {
	Capacity int      `json:"capacity"`
	Samples  []Sample `json:"samples"`
}

// MarshalJSON implements json.Marshaler. Samples serialize oldest first.
func (h History) MarshalJSON() ([]byte, error) {
	capacity := h.capacity
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return json.Marshal(historyJSON{Capacity: capacity, Samples: h.Samples()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw historyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = NewHistory(raw.Capacity)
	for _, s := range raw.Samples {
		h.Push(s.Value, s.At)
	}
	return nil
}
