package coffeesave

// ToBool coerces a loosely typed option value to a bool.
//
// nil and the empty string mean the option was not given and yield def.
// Only the exact string "true" is true, so "True", "1" and "yes" are all false.
// Numbers are true when non-zero and any other value is true.
func ToBool(v any, def bool) bool {
	switch b := v.(type) {
	case nil:
		return def
	case bool:
		return b
	case string:
		if b == "" {
			return def
		}
		return b == "true"
	case int:
		return b != 0
	case int64:
		return b != 0
	case uint64:
		return b != 0
	case float64:
		return b != 0
	default:
		return true
	}
}
