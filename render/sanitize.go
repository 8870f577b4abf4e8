package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	fragmentPolicy     *bluemonday.Policy
	fragmentPolicyOnce sync.Once
)

// fragmentSanitizer allows exactly the elements and attributes this package
// emits.
func fragmentSanitizer() *bluemonday.Policy {
	fragmentPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"article", "section", "header", "aside", "div", "span", "p",
			"h3", "h4", "b", "strong", "label", "button",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		policy.AllowAttrs("class").Globally()
		policy.AllowNoAttrs().OnElements("label")
		policy.AllowAttrs("scope").OnElements("th")
		policy.AllowAttrs("type").OnElements("button")
		policy.AllowDataAttributes()

		fragmentPolicy = policy
	})
	return fragmentPolicy
}

// SanitizeFragment filters raw markup down to the replica's own elements.
// Text is left as is; anything else, such as scripts or event handlers,
// is removed.
func SanitizeFragment(raw string) string {
	if raw == "" {
		return ""
	}
	return fragmentSanitizer().Sanitize(raw)
}

// Fragment serializes n for embedding unescaped in a page.
func Fragment(n *html.Node) (string, error) {
	out, err := HTML(n)
	if err != nil {
		return "", err
	}
	return SanitizeFragment(out), nil
}
