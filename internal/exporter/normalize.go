package exporter

import (
	"regexp"
	"strings"
)

var (
	wsAfterOpenRe   = regexp.MustCompile(`(<[^/][^>]+>)(\s*)`)
	wsBeforeCloseRe = regexp.MustCompile(`(\s*)(</[^>]+>)`)
	emptyTagRe      = regexp.MustCompile(`<[^/][^>]+></[^>]+>`)
	tagWithWsRe     = regexp.MustCompile(`(<[^/][^>]+>)([^<]*\s[^<]*)(</[^>]+>)`)
	wsRunRe         = regexp.MustCompile(`\s+`)
)

// Normalize rewrites markup so that only the styling of visible characters
// matters:
//
//  1. whitespace just inside an opening tag moves before it
//  2. whitespace just inside a closing tag moves after it
//  3. tag pairs left empty are removed
//  4. tagged content still holding whitespace is split on whitespace runs,
//     each non-whitespace piece wrapped on its own
//
// Normalize(Normalize(m)) == Normalize(m) for renderer output.
func Normalize(markup string) string {
	markup = wsAfterOpenRe.ReplaceAllString(markup, "${2}${1}")
	markup = wsBeforeCloseRe.ReplaceAllString(markup, "${2}${1}")
	markup = emptyTagRe.ReplaceAllString(markup, "")

	return tagWithWsRe.ReplaceAllStringFunc(markup, func(match string) string {
		m := tagWithWsRe.FindStringSubmatch(match)
		openTag, content, closeTag := m[1], m[2], m[3]

		var sb strings.Builder
		last := 0
		for _, ws := range wsRunRe.FindAllStringIndex(content, -1) {
			wrap(&sb, openTag, content[last:ws[0]], closeTag)
			sb.WriteString(content[ws[0]:ws[1]])
			last = ws[1]
		}
		wrap(&sb, openTag, content[last:], closeTag)
		return sb.String()
	})
}

func wrap(sb *strings.Builder, openTag, text, closeTag string) {
	if text == "" {
		return
	}
	sb.WriteString(openTag)
	sb.WriteString(text)
	sb.WriteString(closeTag)
}
