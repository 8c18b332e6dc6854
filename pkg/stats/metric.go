package stats

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Metric is a statistic that may be undefined, for example the average of
// zero eligible values. Undefined metrics serialize as JSON null.
type Metric struct {
	Value   float64
	Defined bool
}

// Undefined returns a metric without a value
func Undefined() Metric {
	return Metric{}
}

// Value returns a defined metric rounded to two decimals
func Value(v float64) Metric {
	return Metric{Value: round(v), Defined: true}
}

// MarshalJSON implements json.Marshaler
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Metric{Value: v, Defined: true}
	return nil
}

func (m Metric) String() string {
	if !m.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []int64) Metric {
	if len(values) == 0 {
		return Undefined()
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return Value(sum / float64(len(values)))
}

// median sorts a copy of values
func median(values []int64) Metric {
	if len(values) == 0 {
		return Undefined()
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return Value(float64(sorted[mid]))
	}
	return Value((float64(sorted[mid-1]) + float64(sorted[mid])) / 2)
}

func maximum(values []int64) Metric {
	if len(values) == 0 {
		return Undefined()
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return Value(float64(max))
}
