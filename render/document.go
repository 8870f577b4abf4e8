package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/formlingo"
)

const (
	explanationTitle = "Simplified Explanation"
	copyLabel        = "Copy"
	copiedLabel      = "Copied!"
)

// ExplanationPanel builds the side panel: one paragraph per line of the
// simplification and a copy button carrying the full text.
func ExplanationPanel(simplification string) *html.Node {
	button := element("button", "fl-copy", literal(copyLabel))
	setAttr(button, "type", "button")
	setAttr(button, "data-copy-text", simplification)
	setAttr(button, "data-copied-label", copiedLabel)

	paragraphs := element("div", "fl-paragraphs")
	for _, line := range Paragraphs(simplification) {
		paragraphs.AppendChild(element("p", "", text(line)))
	}

	return element("aside", "fl-explanation",
		element("header", "fl-explanation-header",
			element("h3", "", literal(explanationTitle)),
			button,
		),
		paragraphs,
	)
}

const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title></title>
<style></style>
</head>
<body>
<main class="fl-result"></main>
</body>
</html>`

// Document renders a standalone page for result. The page's lang and dir
// follow targetLanguage.
func Document(result *formlingo.TranslationResult, targetLanguage string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("render: nil result")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentShell))
	if err != nil {
		return "", fmt.Errorf("render: parse document shell: %w", err)
	}

	doc.Find("html").
		SetAttr("lang", formlingo.ToHTMLLang(targetLanguage)).
		SetAttr("dir", formlingo.GetDirection(targetLanguage))
	doc.Find("title").SetText(result.FormTitle)
	doc.Find("style").SetText(Stylesheet)
	doc.Find("main.fl-result").AppendNodes(RenderResult(result), ExplanationPanel(result.Simplification))

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render: serialize document: %w", err)
	}
	return out, nil
}
