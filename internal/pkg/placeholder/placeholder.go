package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Substitute replaces every {{key}} in template with values[key]. Unknown
// keys are left as written.
func Substitute(template string, values map[string]interface{}) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return pattern.ReplaceAllStringFunc(template, func(m string) string {
		key := pattern.FindStringSubmatch(m)[1]
		v, ok := values[key]
		if !ok {
			return m
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
