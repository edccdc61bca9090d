// Package config provides the install-rule configuration loader.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/core/domain"
)

// maxLine bounds a configuration line, delimiter included.
const maxLine = 256

// Load reads the rule list from configFile, or from <root>/etc/pkgadd.conf
// when configFile is empty. A missing file yields no rules. Each non-empty,
// non-comment line is exactly three whitespace-separated tokens:
// event (INSTALL|UPGRADE), ERE pattern, action (YES|NO). Patterns are
// compiled here, once.
func Load(root, configFile string) ([]domain.Rule, error) {
	filename := domain.Normalize(root + "/" + domain.DefaultConfFile)
	if configFile != "" {
		filename = configFile
	}

	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "could not read configuration"), "path", filename)
	}
	defer f.Close()

	var rules []domain.Rule
	lineno := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) >= maxLine {
			return nil, parseError(filename, lineno, "line too long, aborting")
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, parseError(filename, lineno, "wrong number of arguments, aborting")
		}

		var event domain.RuleEvent
		switch fields[0] {
		case "INSTALL":
			event = domain.EventInstall
		case "UPGRADE":
			event = domain.EventUpgrade
		default:
			return nil, parseError(filename, lineno,
				fmt.Sprintf("'%s' unknown event, aborting", fields[0]))
		}

		var action bool
		switch fields[2] {
		case "YES":
			action = true
		case "NO":
			action = false
		default:
			return nil, parseError(filename, lineno,
				fmt.Sprintf("'%s' unknown action, should be YES or NO, aborting", fields[2]))
		}

		rule, err := domain.NewRule(event, fields[1], action)
		if err != nil {
			return nil, zerr.Wrap(err, fmt.Sprintf("%s:%d", filename, lineno))
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "could not read configuration"), "path", filename)
	}

	return rules, nil
}

func parseError(filename string, lineno int, reason string) error {
	return zerr.New(fmt.Sprintf("%s:%d: %s", filename, lineno, reason))
}
