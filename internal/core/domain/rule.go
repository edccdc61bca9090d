package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// RuleEvent selects which front-end decision a rule participates in.
type RuleEvent int

const (
	// EventInstall rules decide whether a path is materialized at all.
	EventInstall RuleEvent = iota

	// EventUpgrade rules decide whether an existing path survives an upgrade.
	EventUpgrade
)

// Rule is one (event, pattern, action) triple from the install-rule
// configuration. Action true means YES, false means NO. The pattern is a
// POSIX extended regular expression matched against the package-relative
// path; it is compiled once at configuration load.
type Rule struct {
	Event   RuleEvent
	Pattern string
	Action  bool

	re *regexp.Regexp
}

// NewRule compiles pattern and returns the rule.
func NewRule(event RuleEvent, pattern string, action bool) (Rule, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return Rule{}, zerr.With(zerr.Wrap(err, "error compiling regular expression"), "pattern", pattern)
	}
	return Rule{Event: event, Pattern: pattern, Action: action, re: re}, nil
}

// Matches reports whether the rule's pattern matches the path. Matching is
// an unanchored search, like regexec.
func (r Rule) Matches(path string) bool {
	return r.re.MatchString(path)
}

// lastMatch finds the last rule with the given event matching path.
func lastMatch(rules []Rule, event RuleEvent, path string) (Rule, bool) {
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].Event == event && rules[i].Matches(path) {
			return rules[i], true
		}
	}
	return Rule{}, false
}

// KeepList returns the subset of files whose last matching UPGRADE rule has
// action NO. These files are preserved across an upgrade.
func KeepList(files []string, rules []Rule) PathSet {
	var keep PathSet
	for _, file := range files {
		if rule, ok := lastMatch(rules, EventUpgrade, file); ok && !rule.Action {
			keep.Add(file)
		}
	}
	return keep
}

// SplitInstall partitions files by their last matching INSTALL rule. A path
// with no matching rule is installed.
func SplitInstall(files []string, rules []Rule) (install, skip PathSet) {
	for _, file := range files {
		installFile := true
		if rule, ok := lastMatch(rules, EventInstall, file); ok {
			installFile = rule.Action
		}
		if installFile {
			install.Add(file)
		} else {
			skip.Add(file)
		}
	}
	return install, skip
}
