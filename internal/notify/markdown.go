package notify

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// telegramAllowedTags is the HTML subset Telegram's HTML parse mode accepts.
var telegramAllowedTags = map[string]bool{
	"b": true, "strong": true,
	"i": true, "em": true,
	"u": true, "ins": true,
	"s": true, "strike": true, "del": true,
	"a": true, "code": true, "pre": true, "blockquote": true,
}

var (
	headingOpenPattern  = regexp.MustCompile(`<h[1-6][^>]*>`)
	headingClosePattern = regexp.MustCompile(`</h[1-6]>`)
	htmlTagPattern      = regexp.MustCompile(`(?s)</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
	htmlCommentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blankLinesPattern   = regexp.MustCompile(`\n{3,}`)
)

var htmlStructureReplacer = strings.NewReplacer(
	"<p>", "", "</p>", "\n\n",
	"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	"<ul>", "", "</ul>", "\n",
	"<ol>", "", "</ol>", "\n",
	"<li>", "• ", "</li>", "\n",
	"<hr>", "\n", "<hr/>", "\n", "<hr />", "\n",
)

// MarkdownToTelegramHTML renders markdown into the HTML subset Telegram
// accepts. Block structure Telegram cannot express (headings, lists,
// paragraphs) is flattened into text; unsupported tags are stripped.
func MarkdownToTelegramHTML(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return html.EscapeString(markdown)
	}

	out := buf.String()
	out = htmlCommentPattern.ReplaceAllString(out, "")
	out = headingOpenPattern.ReplaceAllString(out, "<b>")
	out = headingClosePattern.ReplaceAllString(out, "</b>\n")
	out = htmlStructureReplacer.Replace(out)
	out = htmlTagPattern.ReplaceAllStringFunc(out, func(tag string) string {
		name := strings.ToLower(htmlTagPattern.FindStringSubmatch(tag)[1])
		if telegramAllowedTags[name] {
			return tag
		}
		return ""
	})
	out = blankLinesPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// StripHTMLTags reduces rendered HTML to plain text for parse-mode fallback.
func StripHTMLTags(rendered string) string {
	return html.UnescapeString(htmlTagPattern.ReplaceAllString(rendered, ""))
}
