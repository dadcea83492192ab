package formatting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DescriptionMaxLen bounds descriptions in table output.
const DescriptionMaxLen = 60

// minTruncateLen leaves room for one character plus "...".
const minTruncateLen = 4

// PrettyJSON formats any value as indented JSON, falling back to %v when
// the value cannot be marshaled.
//
// Example:
//
//	fmt.Println(formatting.PrettyJSON(map[string]any{"name": "echo"}))
//	// {
//	//   "name": "echo"
//	// }
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// CompactJSON formats v as single-line JSON, falling back to %v.
func CompactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Truncate collapses all whitespace in s to single spaces and cuts it to
// maxLen runes, ending in "..." when shortened. maxLen below 4 is raised to 4.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
