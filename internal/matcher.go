package internal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// MatchMode is selected once per run and applies to every file.
type MatchMode int

const (
	ExtendedRegexp MatchMode = iota
	FixedStrings
)

func (m MatchMode) String() string {
	switch m {
	case ExtendedRegexp:
		return "extended-regexp"
	case FixedStrings:
		return "fixed-strings"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// Matcher - fast interface for line match.
type Matcher interface {
	Match(line string) bool
	Desc() string // for logs
}

type RegexMatcher struct{ re *regexp.Regexp }

func (m *RegexMatcher) Match(s string) bool { return m.re.MatchString(s) }
func (m *RegexMatcher) Desc() string        { return "re:" + m.re.String() }

type FixedMatcher struct{ s string }

func (m *FixedMatcher) Match(s string) bool { return strings.Contains(s, m.s) }
func (m *FixedMatcher) Desc() string        { return "fixed:" + m.s }

// Compile turns a raw pattern into a Matcher for the given mode.
// Fixed-string compilation never fails; a malformed regexp returns an
// error wrapping ErrInvalidPattern.
func Compile(pattern string, mode MatchMode) (Matcher, error) {
	switch mode {
	case FixedStrings:
		return &FixedMatcher{s: pattern}, nil
	case ExtendedRegexp:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
		}
		logrus.Debugf("Compiled pattern %s", re.String())
		return &RegexMatcher{re: re}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %s", ErrInvalidPattern, mode)
	}
}
