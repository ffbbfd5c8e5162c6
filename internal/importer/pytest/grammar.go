package pytest

import (
	"regexp"
	"strconv"
	"strings"
)

// Line shapes of a pytest >= 7 transcript (non-tty, --code-highlight=no).
var (
	collectedRe    = regexp.MustCompile(`^(collecting \.\.\. )?(collected (\d+) items?((?: / \d+ [a-z]+)*))$`)
	collectErrorRe = regexp.MustCompile(` / (\d+) errors?`)
	letterRe       = regexp.MustCompile(`^(?:(\S+) )?([.FEsxX]+)(\s*\[\s*(\d+)%\])?$`)
	verboseRe      = regexp.MustCompile(`^(.+?) (PASSED|FAILED|ERROR|SKIPPED|XFAIL|XPASS)( \(.*\))?(\s+\[\s*(\d+)%\])?$`)
	finalTitleRe   = regexp.MustCompile(`^((?:\d+ [a-z]+)(?:, \d+ [a-z]+)*|no tests ran)( in \d+\.\d+s(?: \(\d+:\d\d:\d\d\))?)$`)
	summaryEntryRe = regexp.MustCompile(`^(FAILED|ERROR|PASSED|SKIPPED|XFAIL|XPASS)( .*)?$`)
	fileLocationRe = regexp.MustCompile(`^(\S+?):(\d+): (.*)$`)
	fixtureFileRe  = regexp.MustCompile(`^file .+, line \d+$`)
	collapsedRe    = regexp.MustCompile(`^(\S+): (\d+) warnings?$`)
	unlocatedRe    = regexp.MustCompile(`^\S.*:\d+: \w+: `)

	// lines that carry an outcome and must never fall back to plain
	outcomeShapedRe = regexp.MustCompile(`(?:^|\s)(?:PASSED|FAILED|ERROR|SKIPPED|XFAIL|XPASS)(?:\s|$)|\[\s*\d+%\]\s*$|\b\d+ (?:passed|failed|skipped|deselected|xfailed|xpassed|warnings?|errors?)\b`)
)

const (
	failMarker     = "E   "
	directCause    = "The above exception was the direct cause of the following exception:"
	duringHandling = "During handling of the above exception, another exception occurred:"
)

// parseSep splits a separator line "<fill> <title> <fill>" written by
// pytest's sep(). The right fill is as long as the left one, or one longer.
func parseSep(line string) (sepchar byte, fill, title, rightFill string, ok bool) {
	if len(line) < 5 {
		return 0, "", "", "", false
	}

	c := line[0]
	if c != '=' && c != '_' && c != '-' && c != '!' {
		return 0, "", "", "", false
	}

	left := 0
	for left < len(line) && line[left] == c {
		left++
	}
	right := 0
	for right < len(line) && line[len(line)-1-right] == c {
		right++
	}
	if left+right+3 > len(line) || line[left] != ' ' || line[len(line)-1-right] != ' ' {
		return 0, "", "", "", false
	}
	if right != left && right != left+1 {
		return 0, "", "", "", false
	}

	title = line[left+1 : len(line)-right-1]
	if strings.TrimSpace(title) == "" {
		return 0, "", "", "", false
	}
	return c, line[:left], title, line[len(line)-right:], true
}

// isEntrySeparator matches the "_ _ _" line between traceback entries.
func isEntrySeparator(line string) bool {
	line = strings.TrimRight(line, " ")
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if (i%2 == 0 && line[i] != '_') || (i%2 == 1 && line[i] != ' ') {
			return false
		}
	}
	return true
}

func isFinalTitle(title string) bool {
	return finalTitleRe.MatchString(title)
}

/////////////////////////////////////////////////////////////////////////////
// OUTCOMES AND COLORS
/////////////////////////////////////////////////////////////////////////////

var letterCategory = map[byte]string{
	'.': "passed",
	'F': "failed",
	'E': "error",
	's': "skipped",
	'x': "xfailed",
	'X': "xpassed",
}

var wordCategory = map[string]string{
	"PASSED":  "passed",
	"FAILED":  "failed",
	"ERROR":   "error",
	"SKIPPED": "skipped",
	"XFAIL":   "xfailed",
	"XPASS":   "xpassed",
}

var knownCategories = map[string]bool{
	"failed": true, "passed": true, "skipped": true, "deselected": true,
	"xfailed": true, "xpassed": true, "warnings": true, "error": true,
}

// countCategory maps the noun of a "N noun" phrase to its stats category.
func countCategory(noun string) string {
	switch noun {
	case "warning", "warnings":
		return "warnings"
	case "error", "errors":
		return "error"
	}
	return noun
}

func categoryColor(category string) string {
	switch category {
	case "failed", "error":
		return "red"
	case "passed":
		return "green"
	}
	return "yellow"
}

// mainColor is the session color pytest paints progress and the final rule
// with, given the categories reported so far.
func mainColor(seen map[string]int, isLast bool) string {
	unknown := false
	for category, n := range seen {
		if n > 0 && !knownCategories[category] {
			unknown = true
		}
	}

	switch {
	case seen["failed"] > 0 || seen["error"] > 0:
		return "red"
	case seen["warnings"] > 0 || seen["xpassed"] > 0 || unknown:
		return "yellow"
	case seen["passed"] > 0 || !isLast:
		return "green"
	}
	return "yellow"
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
