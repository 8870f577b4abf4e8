package render

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ZaguanLabs/formlingo"
)

// RenderResult builds the replica form: a titled article with one block per section.
func RenderResult(result *formlingo.TranslationResult) *html.Node {
	if result == nil {
		return nil
	}

	article := element("article", "fl-replica",
		element("header", "fl-replica-header",
			element("h3", "fl-title", text(result.FormTitle)),
		),
	)
	body := element("div", "fl-sections")
	for _, section := range result.Sections {
		body.AppendChild(RenderSection(section))
	}
	article.AppendChild(body)
	return article
}

// RenderSection draws one section. Table sections take their column headers
// from the first row; every later row becomes a body row of empty cells, one
// per header column.
func RenderSection(section formlingo.FormSection) *html.Node {
	block := element("section", "fl-section",
		element("h4", "fl-section-title", text(section.SectionTitle)),
	)
	if strings.TrimSpace(section.Description) != "" {
		block.AppendChild(element("p", "fl-description", text(section.Description)))
	}

	if section.IsTable {
		block.AppendChild(renderTable(section.Rows))
		return block
	}

	rows := element("div", "fl-rows")
	for _, row := range section.Rows {
		line := element("div", "fl-row")
		for _, field := range row.Fields {
			if n := RenderField(field); n != nil {
				line.AppendChild(n)
			}
		}
		rows.AppendChild(line)
	}
	block.AppendChild(rows)
	return block
}

func renderTable(rows []formlingo.FormRow) *html.Node {
	table := element("table", "fl-table")
	thead := element("thead", "")
	headRow := element("tr", "fl-table-head")
	thead.AppendChild(headRow)
	tbody := element("tbody", "")
	table.AppendChild(thead)
	table.AppendChild(tbody)

	if len(rows) == 0 {
		return element("div", "fl-table-wrap", table)
	}

	headers := rows[0].Fields
	for i, h := range headers {
		th := element("th", cellClass("fl-cell fl-cell--header", i, len(headers)),
			numberPrefix(h.OriginalNumber),
			text(h.Label),
		)
		setAttr(th, "scope", "col")
		headRow.AppendChild(th)
	}

	// Data rows carry no content of their own; only their count matters.
	for _, row := range rows[1:] {
		columns := len(headers)
		if columns == 0 {
			columns = len(row.Fields)
		}
		tr := element("tr", "fl-table-row")
		for i := 0; i < columns; i++ {
			tr.AppendChild(element("td", cellClass("fl-cell", i, columns)))
		}
		tbody.AppendChild(tr)
	}

	return element("div", "fl-table-wrap", table)
}

// cellClass marks every cell but the last with a right-hand separator.
func cellClass(base string, index, count int) string {
	if index < count-1 {
		return base + " fl-cell--sep"
	}
	return base
}

// RenderField draws one field by type. Unknown types render nothing.
func RenderField(field formlingo.FormField) *html.Node {
	shape := ClassifyLabel(field.Label)
	number := field.OriginalNumber

	switch field.Type {
	case formlingo.FieldLabel:
		caption := element("strong", "fl-label-text", numberPrefix(number), text(shape.Text))
		if shape.Side {
			caption.AppendChild(literal(":"))
		}
		return element("div", "fl-field fl-field--label", caption)

	case formlingo.FieldCheckbox:
		return element("div", "fl-field fl-field--checkbox",
			element("span", "fl-box"),
			element("label", "", numberPrefix(number), text(strings.TrimSpace(field.Label))),
		)

	case formlingo.FieldPhoto:
		return element("div", "fl-field fl-field--photo",
			numberPrefix(number),
			text(strings.TrimSpace(field.Label)),
		)

	case formlingo.FieldText:
		if shape.Side {
			return element("div", "fl-field fl-field--text fl-field--side",
				element("label", "fl-side-label", numberPrefix(number), text(shape.Text), literal(":")),
				element("span", "fl-underline"),
			)
		}
		return element("div", "fl-field fl-field--text fl-field--stacked",
			element("label", "fl-caption", numberPrefix(number), text(shape.Text)),
			element("span", "fl-input"),
		)

	default:
		return nil
	}
}

func numberPrefix(number string) *html.Node {
	if strings.TrimSpace(number) == "" {
		return nil
	}
	return element("b", "fl-number", text(number))
}

// Paragraphs splits the explanation on line breaks. Lines are kept verbatim,
// including empty ones, so an empty explanation is one empty paragraph.
func Paragraphs(simplification string) []string {
	lines := strings.Split(simplification, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
