package sso

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type formInput struct {
	name  string
	value string
}

type pageForm struct {
	action string
	inputs []formInput
}

// firstForm parses the first <form> on a page. The identity provider renders
// exactly one per step.
func firstForm(body string) (pageForm, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return pageForm{}, false
	}

	sel := doc.Find("form").First()
	if sel.Length() == 0 {
		return pageForm{}, false
	}

	form := pageForm{action: sel.AttrOr("action", "")}
	sel.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		form.inputs = append(form.inputs, formInput{name: name, value: input.AttrOr("value", "")})
	})

	return form, true
}

// valuedFields forwards only inputs that carry a value, the way a browser
// auto-submits a redirect form.
func (f pageForm) valuedFields() url.Values {
	fields := url.Values{}
	for _, input := range f.inputs {
		if input.value == "" {
			continue
		}
		fields.Set(input.name, input.value)
	}
	return fields
}

// allFields includes every named input, empty values and all, so that the
// credentials form keeps its hidden fields.
func (f pageForm) allFields() url.Values {
	fields := url.Values{}
	for _, input := range f.inputs {
		fields.Set(input.name, input.value)
	}
	return fields
}

// loginLink finds the href of the first anchor whose text the predicate
// accepts.
func loginLink(body string, match func(string) bool) (string, bool) {
	if match == nil {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	href := ""
	found := false
	doc.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if !match(anchor.Text()) {
			return true
		}
		href, found = anchor.Attr("href")
		return false
	})

	if !found || href == "" {
		return "", false
	}
	return href, true
}
