package models

import (
	"encoding/json"
	"testing"
	"time"
)

var historyT0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestHistoryBound(t *testing.T) {
	h := NewHistory(20)
	for i := 0; i < 25; i++ {
		h.Push(float64(i), historyT0.Add(time.Duration(i)*time.Minute))
	}
	if h.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", h.Len())
	}
	values := h.Values()
	if values[0] != 5 || values[19] != 24 {
		t.Errorf("Values() = [%v ... %v], want [5 ... 24]", values[0], values[19])
	}
}

func TestHistoryChronologicalOrder(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Push(float64(i), historyT0.Add(time.Duration(i)*time.Minute))
	}
	samples := h.Samples()
	for i := 1; i < len(samples); i++ {
		if samples[i].At.Before(samples[i-1].At) {
			t.Errorf("samples out of order at %d: %v before %v", i, samples[i].At, samples[i-1].At)
		}
	}
}

func TestHistoryLast(t *testing.T) {
	h := NewHistory(3)
	if _, ok := h.Last(); ok {
		t.Error("Last() on empty history should report false")
	}
	for i := 0; i < 5; i++ {
		h.Push(float64(i), historyT0.Add(time.Duration(i)*time.Minute))
		last, ok := h.Last()
		if !ok || last.Value != float64(i) {
			t.Errorf("after push %d: Last() = %v, %v", i, last.Value, ok)
		}
	}
}

func TestHistoryMean(t *testing.T) {
	h := NewHistory(4)
	if h.Mean() != 0 {
		t.Error("Mean() of empty history should be 0")
	}
	for _, v := range []float64{1, 2, 3} {
		h.Push(v, historyT0)
	}
	if got := h.Mean(); got != 2 {
		t.Errorf("Mean() = %v, want 2", got)
	}
}

func TestHistoryZeroValueUsable(t *testing.T) {
	var h History
	for i := 0; i < DefaultHistorySize+5; i++ {
		h.Push(1, historyT0)
	}
	if h.Len() != DefaultHistorySize {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistorySize)
	}
}

func TestHistoryJSONRoundTrip(t *testing.T) {
	h := NewHistory(5)
	for i := 0; i < 8; i++ {
		h.Push(float64(i)*0.5, historyT0.Add(time.Duration(i)*time.Hour))
	}

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back History
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want, got := h.Values(), back.Values()
	if len(want) != len(got) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
