package utils

import (
	"fmt"
	"strconv"
)

// GetFloat64Value safely extracts a float64 value from event metadata
func GetFloat64Value(data map[string]interface{}, key string) float64 {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// GetStringValue safely extracts a string value from event metadata
func GetStringValue(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case string:
			return v
		case int, int64, float64, float32, bool:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// HasKey reports whether event metadata contains a key
func HasKey(data map[string]interface{}, key string) bool {
	_, ok := data[key]
	return ok
}
