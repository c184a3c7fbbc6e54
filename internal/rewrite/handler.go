package rewrite

import (
	"regexp"
	"strings"
)

// HandlerRef is the name the browser runtime gives the wrapping function of a
// handler, so a .once handler can detach itself
const HandlerRef = "$h"

var plainCall = regexp.MustCompile(`^[\w$]+$`)

// keyAliases maps a key modifier to the lower-cased KeyboardEvent.key values it matches
var keyAliases = map[string][]string{
	"enter":     {"enter", "return"},
	"return":    {"enter", "return"},
	"delete":    {"delete", "backspace"},
	"backspace": {"delete", "backspace"},
	"esc":       {"esc", "escape"},
	"escape":    {"esc", "escape"},
	"space":     {" ", "spacebar", "space bar"},
	"spacebar":  {" ", "spacebar", "space bar"},
	"up":        {"up", "arrowup"},
	"down":      {"down", "arrowdown"},
	"left":      {"left", "arrowleft"},
	"right":     {"right", "arrowright"},
}

var eventKeywords = map[string]bool{
	"stop": true, "prevent": true, "self": true, "once": true,
	"capture": true, "passive": true,
}

// ParseEvent splits "@click.stop.prevent" into the event name and its modifiers
func ParseEvent(attr string) (event string, modifiers []string) {
	parts := strings.Split(strings.TrimPrefix(attr, "@"), ".")
	return parts[0], parts[1:]
}

// EventKey is the attribute key a compiled handler is emitted under. Modifiers
// compiled into the handler body are dropped; listener options (capture,
// passive) stay because they apply to addEventListener itself.
func EventKey(attr string) string {
	event, mods := ParseEvent(attr)
	key := "@" + event
	for _, m := range mods {
		if m == "capture" || m == "passive" {
			key += "." + m
		}
	}
	return key
}

// ParseHandler compiles an event attribute into a statement list. Guards for
// the modifiers come first in a fixed order (stop, prevent, self, key match),
// then the handler body, and .once detaches the handler last.
func ParseHandler(attr, expr string) string {
	event, mods := ParseEvent(attr)
	has := func(m string) bool {
		for _, x := range mods {
			if x == m {
				return true
			}
		}
		return false
	}

	var stmts []string
	if has("stop") {
		stmts = append(stmts, EventParam+".stopPropagation()")
	}
	if has("prevent") {
		stmts = append(stmts, EventParam+".preventDefault()")
	}
	if has("self") {
		stmts = append(stmts, "if ("+EventParam+".target !== "+EventParam+".currentTarget) return")
	}
	if strings.HasPrefix(event, "key") {
		if guard := keyGuard(mods); guard != "" {
			stmts = append(stmts, guard)
		}
	}

	body := strings.TrimSpace(expr)
	switch {
	case body == "":
	case plainCall.MatchString(body) && !reserved[body]:
		stmts = append(stmts, Context+"."+body+".call("+Context+", "+EventParam+")")
	default:
		stmts = append(stmts, ScopeIdentifiers(body))
	}

	if has("once") {
		stmts = append(stmts, EventParam+".currentTarget.removeEventListener("+EventParam+".type, "+HandlerRef+")")
	}
	return strings.Join(stmts, "; ")
}

func keyGuard(mods []string) string {
	var keys []string
	seen := map[string]bool{}
	for _, m := range mods {
		if eventKeywords[m] {
			continue
		}
		names, ok := keyAliases[strings.ToLower(m)]
		if !ok {
			names = []string{strings.ToLower(m)}
		}
		for _, k := range names {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, quote(k))
			}
		}
	}
	if len(keys) == 0 {
		return ""
	}
	return "if (![" + strings.Join(keys, ", ") + "].includes(" + EventParam + ".key.toLowerCase())) return"
}
