package value

import (
	"encoding/json"
	"math"
)

// ToJSON marshals a value for machine-readable output. Symbols become
// strings, lists arrays, functions their display form and Nothing null.
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(toRaw(v))
}

func toRaw(v Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case nothing:
		return nil

	case Bool:
		return val.Value

	case Int:
		return val.Value

	case Float:
		// JSON has no representation for these
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return val.String()
		}
		return val.Value

	case String:
		return val.Value

	case Symbol:
		return val.Name

	case List:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = toRaw(item)
		}
		return items
	}

	return v.String()
}

// ToJSONString is a convenience that returns a string.
func ToJSONString(v Value) string {
	b, err := ToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
