package model

import (
	"testing"
)

func TestNextOrder(t *testing.T) {
	tests := []struct {
		name string
		max  *Item
		want int
	}{
		{"empty store", nil, 1},
		{"one item", &Item{Order: 1}, 2},
		{"existing items", &Item{Order: 41}, 42},
		{"negative order", &Item{Order: -3}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextOrder(tt.max); got != tt.want {
				t.Errorf("NextOrder() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetDone(t *testing.T) {
	item := NewItem("buy milk", 1)

	if item.CompletedAt != nil {
		t.Fatal("new item should not be completed")
	}

	item.SetDone(true)
	if item.CompletedAt == nil {
		t.Fatal("SetDone(true) should record a timestamp")
	}

	item.SetDone(false)
	if item.CompletedAt != nil {
		t.Fatal("SetDone(false) should clear the timestamp")
	}
}
