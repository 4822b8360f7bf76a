package mica

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Metadata struct {
	URL string `json:"url"`
}

// Bundle is the result of an extraction: a dataset, the study it belongs
// to and the summaries of its variables.
type Bundle struct {
	Metadata  Metadata          `json:"metadata"`
	Dataset   Dataset           `json:"dataset"`
	Study     Study             `json:"study"`
	Variables []VariableSummary `json:"variables"`
}

// DatasetURL is the public Mica page of a dataset.
func DatasetURL(host, datasetID string) string {
	return strings.TrimRight(host, "/") + "/dataset/" + datasetID
}

// ParseBundle validates both entities of a bundle and normalizes their
// content. Variables are taken as they are.
func ParseBundle(data []byte) (Bundle, error) {
	var raw struct {
		Metadata  *Metadata         `json:"metadata"`
		Dataset   json.RawMessage   `json:"dataset"`
		Study     json.RawMessage   `json:"study"`
		Variables []VariableSummary `json:"variables"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Bundle{}, schemaError("bundle", aliasTable{}, err)
	}
	if raw.Metadata == nil {
		return Bundle{}, &SchemaValidationError{Entity: "bundle", Path: "metadata", Reason: "required field is missing"}
	}
	if raw.Dataset == nil {
		return Bundle{}, &SchemaValidationError{Entity: "bundle", Path: "dataset", Reason: "required field is missing"}
	}
	if raw.Study == nil {
		return Bundle{}, &SchemaValidationError{Entity: "bundle", Path: "study", Reason: "required field is missing"}
	}

	dataset, err := ParseDataset(raw.Dataset)
	if err != nil {
		return Bundle{}, err
	}
	study, err := ParseStudy(raw.Study)
	if err != nil {
		return Bundle{}, err
	}
	if dataset.StudyID() != study.ID {
		return Bundle{}, &SchemaValidationError{
			Entity: "bundle",
			Path:   "study.id",
			Reason: fmt.Sprintf("dataset belongs to study %q, bundle holds %q", dataset.StudyID(), study.ID),
		}
	}

	b := Bundle{Metadata: *raw.Metadata, Dataset: dataset, Study: study, Variables: raw.Variables}
	if err := b.Normalize(); err != nil {
		return Bundle{}, err
	}
	if b.Variables == nil {
		b.Variables = []VariableSummary{}
	}
	return b, nil
}

func LoadBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	return ParseBundle(data)
}

func (b *Bundle) Normalize() error {
	if err := NormalizeDataset(&b.Dataset); err != nil {
		return err
	}
	return NormalizeStudy(&b.Study)
}

// Encode renders the bundle as indented JSON followed by a newline.
func (b Bundle) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
