package workflow

import "regexp"

// tokenRe matches {{var}} placeholders, tolerating interior whitespace.
var tokenRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Render substitutes {{var}} tokens in the template from the context.
// Tokens with no matching context key are left verbatim.
func Render(template string, context map[string]string) string {
	return tokenRe.ReplaceAllStringFunc(template, func(token string) string {
		key := tokenRe.FindStringSubmatch(token)[1]
		if value, ok := context[key]; ok {
			return value
		}
		return token
	})
}
