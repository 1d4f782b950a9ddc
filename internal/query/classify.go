package query

import "strings"

// Kind is the classification a raw query string resolves to.
type Kind int

const (
	KindFilter Kind = iota
	KindRegex
	KindTree
)

// classify applies the three-way dispatch rule verbatim: a plain
// substring filter unless the string looks like a path expression or a
// /body/flags regex literal.
func classify(expr string) (Kind, string, string) {
	if !strings.HasPrefix(expr, "/") && !strings.ContainsRune(expr, '(') {
		return KindFilter, expr, ""
	}
	if body, flags, ok := splitRegexLiteral(expr); ok {
		return KindRegex, body, flags
	}
	return KindTree, expr, ""
}

// splitRegexLiteral recognizes /<body>/<flags> where flags is a
// (possibly empty) run of characters drawn from {g,i,m}. The body may
// not be empty; it may contain escaped slashes ("\/").
func splitRegexLiteral(expr string) (body, flags string, ok bool) {
	if len(expr) < 2 || expr[0] != '/' {
		return "", "", false
	}
	// Find the last unescaped '/' delimiting body from flags.
	end := -1
	for i := len(expr) - 1; i > 0; i-- {
		if expr[i] != '/' {
			continue
		}
		if i > 0 && expr[i-1] == '\\' {
			continue
		}
		end = i
		break
	}
	if end <= 0 {
		return "", "", false
	}
	body = expr[1:end]
	flags = expr[end+1:]
	if body == "" {
		return "", "", false
	}
	for _, c := range flags {
		if c != 'g' && c != 'i' && c != 'm' {
			return "", "", false
		}
	}
	return strings.ReplaceAll(body, `\/`, "/"), flags, true
}
