package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"int", 42, 42},
		{"int64", int64(42), 42},
		{"uint8", uint8(7), 7},
		{"float64", float64(42.9), 42},
		{"json number", json.Number("17"), 17},
		{"json float number", json.Number("17.0"), 17},
		{"string", " 42 ", 42},
		{"string float", "42.0", 42},
		{"bytes", []byte("5"), 5},
		{"nil", nil, 0},
		{"garbage", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt64(tt.in))
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float64", 1.5, 1.5},
		{"int", 3, 3},
		{"json number", json.Number("2.25"), 2.25},
		{"dot", "1.4", 1.4},
		{"comma", "1,4", 1.4},
		{"thousands space", "3 100", 3100},
		{"nil", nil, 0},
		{"garbage", "n/a", 0},
		{"nan", "NaN", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToFloat(tt.in), 1e-9)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "12", ToString(json.Number("12")))
	assert.Equal(t, "1.4", ToString(1.4))
	assert.Equal(t, "7", ToString(7))
}
