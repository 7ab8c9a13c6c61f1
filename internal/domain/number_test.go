package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	type payload struct {
		Value  Number  `json:"value"`
		Points *Number `json:"points"`
	}

	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"plain number", `{"value": 42}`, 42},
		{"float", `{"value": 3.5}`, 3.5},
		{"numeric string", `{"value": "17"}`, 17},
		{"padded numeric string", `{"value": " 8 "}`, 8},
		{"null", `{"value": null}`, 0},
		{"garbage string", `{"value": "abc"}`, 0},
		{"bool coerces to zero", `{"value": true}`, 0},
		{"object coerces to zero", `{"value": {"nested": 1}}`, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(c.in), &p))
			assert.Equal(t, c.want, p.Value.Float())
		})
	}
}

func TestNumberPointerDistinguishesAbsent(t *testing.T) {
	type payload struct {
		Points *Number `json:"points"`
	}

	var absent payload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Points)

	var zero payload
	require.NoError(t, json.Unmarshal([]byte(`{"points": 0}`), &zero))
	require.NotNil(t, zero.Points)
	assert.Equal(t, 0.0, zero.Points.Float())
}
