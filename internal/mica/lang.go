package mica

import (
	"github.com/IBM/fp-go/v2/option"
)

// LocalizedText is one language variant of a Mica text field.
type LocalizedText struct {
	Lang  string `json:"lang"  validate:"required"`
	Value string `json:"value"`
}

// Localized is the set of language variants of a single text field. Mica does
// not guarantee that each language appears only once.
type Localized []LocalizedText

// Resolve returns the value of the first entry whose language equals lang.
// Later entries for the same language are ignored.
func Resolve(values []LocalizedText, lang string) option.Option[string] {
	for _, v := range values {
		if v.Lang == lang {
			return option.Some(v.Value)
		}
	}
	return option.None[string]()
}

func (l Localized) Resolve(lang string) option.Option[string] {
	return Resolve(l, lang)
}

// Get is Resolve for callers that prefer the comma-ok form.
func (l Localized) Get(lang string) (string, bool) {
	o := Resolve(l, lang)
	return option.MonadGetOrElse(o, func() string { return "" }), option.IsSome(o)
}
