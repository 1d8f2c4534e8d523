package main

import "strings"

// extractOverrides splits service override tokens ("--<Service>.<attr>=<value>")
// out of the raw argument list. Cobra would reject flags it does not know
// about, so overrides never reach it; everything else passes through in order.
func extractOverrides(args []string) (overrides, rest []string) {
	for _, arg := range args {
		if isOverrideToken(arg) {
			overrides = append(overrides, arg)
		} else {
			rest = append(rest, arg)
		}
	}
	return overrides, rest
}

// isOverrideToken reports whether an argument has the override shape: a long
// flag whose name part contains a dot and that carries an inline value. Real
// pipeship flags never contain dots.
func isOverrideToken(arg string) bool {
	if !strings.HasPrefix(arg, "--") {
		return false
	}
	path, _, found := strings.Cut(arg[2:], "=")
	return found && strings.Contains(path, ".")
}
