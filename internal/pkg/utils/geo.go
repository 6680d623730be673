package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseCoordinate приводит значение координаты к float64.
// Бэкенд присылает координаты то числом, то строкой; всё нечисловое даёт 0.
func ParseCoordinate(v interface{}) float64 {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return parsePrefix(val.String())
		}
		f = parsed
	case string:
		return parsePrefix(val)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parsePrefix разбирает ведущее число строки ("116.40abc" -> 116.40)
func parsePrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || ((r == '-' || r == '+') && i == 0) || r == 'e' || r == 'E' {
			end = i + 1
			continue
		}
		break
	}
	for end > 0 {
		f, err := strconv.ParseFloat(s[:end], 64)
		if err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return 0
			}
			return f
		}
		end--
	}
	return 0
}
