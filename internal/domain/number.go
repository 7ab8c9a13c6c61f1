package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes WLS numeric fields that may arrive as JSON numbers, numeric
// strings, or null. Anything unparseable coerces to 0; decoding never fails.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}

	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

func (n Number) Int() int {
	return int(n)
}
