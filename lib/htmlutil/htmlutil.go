package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses whitespace and drops non-printable runes.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// LooksLikeHTML reports whether a response is an HTML document, going by its
// content type first and its first non-space byte otherwise.
func LooksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}

// ErrorPageMessage extracts the human readable message of an HTML error
// page: the first non-empty paragraph, then the first heading, then the
// title. It returns "" when none of them carry text.
func ErrorPageMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, selector := range []string{"p", "h1", "title"} {
		message := ""
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			for _, n := range sel.Nodes {
				message = CleanText(GetText(n))
				if message != "" {
					return false
				}
			}
			return true
		})
		if message != "" {
			return message
		}
	}
	return ""
}
