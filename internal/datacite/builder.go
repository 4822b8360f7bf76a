package datacite

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

const (
	doiResolver         = "https://doi.org/"
	identifierTypeDOI   = "DOI"
	titleTypeAlternate  = "AlternativeTitle"
	descriptionAbstract = "Abstract"
)

var (
	submissionOnce      sync.Once
	submissionValidator *validator.Validate
)

func validateSubmission(s Submission) error {
	submissionOnce.Do(func() {
		submissionValidator = validator.New()
		submissionValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
	})
	err := submissionValidator.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		_, field, _ := strings.Cut(verrs[0].Namespace(), ".")
		return &MappingError{Field: field, Reason: fmt.Sprintf("failed %s validation", verrs[0].Tag())}
	}
	return err
}

// Build maps a dataset, its study and the static configuration onto a DOI
// submission. Localized values are resolved in cfg.Locale. Nothing is
// returned unless every required attribute could be filled; the study
// acronym title and the abstract are left out when the locale has none.
func Build(ds mica.Dataset, st mica.Study, meta mica.Metadata, cfg StaticConfig) (Submission, error) {
	locale := cfg.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	name, ok := ds.Name.Get(locale)
	if !ok {
		return Submission{}, &MappingError{Field: "titles[0].title", Source: "dataset.name", Reason: missingIn(locale)}
	}
	titles := []Title{{Title: name}}
	if acronym, ok := st.Acronym.Get(locale); ok {
		titles = append(titles, Title{Title: acronym, TitleType: titleTypeAlternate})
	}
	descriptions := []Description{}
	if description, ok := ds.Description.Get(locale); ok {
		descriptions = append(descriptions, Description{Description: description, DescriptionType: descriptionAbstract})
	}
	if ds.Timestamps.Created.IsZero() {
		return Submission{}, &MappingError{Field: "publicationYear", Source: "dataset.timestamps.created", Reason: "not set"}
	}
	if meta.URL == "" {
		return Submission{}, &MappingError{Field: "url", Source: "metadata.url", Reason: "not set"}
	}

	s := Submission{
		Prefix: cfg.Prefix,
		Suffix: cfg.Suffix,
		URL:    meta.URL,
		Identifiers: []Identifier{{
			Identifier:     doiResolver + cfg.DOI(),
			IdentifierType: identifierTypeDOI,
		}},
		Creators:            slices.Clone(cfg.Creators),
		Titles:              titles,
		Publisher:           cfg.Publisher,
		PublicationYear:     ds.Timestamps.Created.Time().Year(),
		ResourceTypeGeneral: cfg.ResourceTypeGeneral,
		ResourceType:        cfg.ResourceType,

		Subjects:           nonNil(cfg.Subjects),
		Contributors:       slices.Clone(cfg.Contributors),
		Dates:              nonNil(cfg.Dates),
		RelatedIdentifiers: slices.Clone(cfg.RelatedIdentifiers),
		Descriptions:       descriptions,
		GeoLocations:       nonNil(cfg.GeoLocations),

		Language: cfg.Language,
		Rights:   slices.Clone(cfg.Rights),
		Formats:  slices.Clone(cfg.Formats),
		Version:  cfg.Version,
	}
	if err := validateSubmission(s); err != nil {
		return Submission{}, err
	}
	return s, nil
}

func missingIn(locale string) string {
	return fmt.Sprintf("no value for language %q", locale)
}

// nonNil copies a recommended group, which DataCite expects as a list even
// when empty.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
