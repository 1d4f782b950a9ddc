package query

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// Evaluator is a pure predicate over an event, or nil meaning "match
// all".
type Evaluator func(reg *schema.Registry, e *model.Event) bool

// Compile builds the evaluator for a classified filter or regex query.
// kind must be KindFilter or KindRegex; KindTree has no Evaluator, it is
// handled by the tree-expression path instead.
func Compile(kind Kind, body, flags string) (Evaluator, error) {
	switch kind {
	case KindFilter:
		return compileSubstring(body), nil
	case KindRegex:
		return compileRegex(body, flags)
	default:
		return nil, fmt.Errorf("query: Compile called with a tree-expression kind")
	}
}

// compileSubstring builds the evaluator for a plain (non-/-delimited)
// filter string. The string is first tried as a case-insensitive regex,
// so patterns like ".*" behave as a match-all the way users expect from
// the query box; a string that is not a valid regex degrades to a
// locale-aware case-insensitive substring match via golang.org/x/text's
// caser, which folds non-ASCII identifiers correctly where
// strings.ToLower does not.
func compileSubstring(body string) Evaluator {
	if body == "" {
		return nil
	}
	if re, err := regexp.Compile("(?i)" + body); err == nil {
		return regexEvaluator(re)
	}
	fold := cases.Fold()
	needle := fold.String(body)
	return func(reg *schema.Registry, e *model.Event) bool {
		t := reg.Get(e.Type)
		if t != nil && strings.Contains(fold.String(t.Name), needle) {
			return true
		}
		for _, v := range e.Args {
			if strings.Contains(fold.String(v.Text()), needle) {
				return true
			}
		}
		return false
	}
}

func compileRegex(body, flags string) (Evaluator, error) {
	pattern := body
	var inline string
	if strings.ContainsRune(flags, 'i') {
		inline += "i"
	}
	if strings.ContainsRune(flags, 'm') {
		inline += "m"
	}
	if inline != "" {
		pattern = "(?" + inline + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("query: malformed filter regex: %w", err)
	}
	return regexEvaluator(re), nil
}

func regexEvaluator(re *regexp.Regexp) Evaluator {
	return func(reg *schema.Registry, e *model.Event) bool {
		t := reg.Get(e.Type)
		if t != nil && re.MatchString(t.Name) {
			return true
		}
		for _, v := range e.Args {
			if re.MatchString(v.Text()) {
				return true
			}
		}
		return false
	}
}
