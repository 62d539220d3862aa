package rules

// SnapshotContext builds the CEL evaluation context for a character
// snapshot. Integers are widened to int64 because CEL works in int64.
func SnapshotContext(character, class string, level, experience int, stats map[string]int, equipped map[string]string) map[string]any {
	return map[string]any{
		"character":  character,
		"class":      class,
		"level":      int64(level),
		"experience": int64(experience),
		"stats":      intMapToAny(stats),
		"equipped":   strMapToAny(equipped),
	}
}

func intMapToAny(m map[string]int) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = int64(v)
	}
	return result
}

func strMapToAny(m map[string]string) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
