package config

import "strings"

var hotkeyAliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"command": "cmd",
	"win":     "cmd",
	"super":   "cmd",
	"esc":     "escape",
	"return":  "enter",
}

// NormalizeHotkey rewrites a combo such as "<Ctrl>+Shift+Q" into the canonical
// lower-case form "ctrl+shift+q". Blank input disables the hotkey.
func NormalizeHotkey(value string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return ""
	}
	cleaned = strings.NewReplacer("<", "", ">", "").Replace(cleaned)

	var tokens []string
	for _, tok := range strings.Split(cleaned, "+") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if alias, ok := hotkeyAliases[tok]; ok {
			tok = alias
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, "+")
}
