package mica

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/fp-go/v2/option"
)

const entityVariables = "variables"

// variableFields is the RQL projection requested for every variable.
const variableFields = "attributes.label.*,attributes.description.*,variableType,valueType,categories.*,unit,attributes.Mlstr_area*"

// VariablesPath builds the RQL search path for the variables of a dataset.
// Mica expects the query unescaped, so it is not URL encoded.
func VariablesPath(datasetID string, limit int, locale string) string {
	return fmt.Sprintf(
		"/ws/variables/_rql?query=dataset(in(Mica_dataset.id,%s)),variable(limit(0,%d),fields(%s),sort(index,name)),locale(%s)",
		datasetID, limit, variableFields, locale,
	)
}

// VariableSummary is the part of a variable search hit kept in a bundle. The
// dataset and study context repeated on every hit is dropped.
type VariableSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	VariableType  string          `json:"variableType"`
	VariableLabel json.RawMessage `json:"variableLabel"`
	Annotations   json.RawMessage `json:"annotations"`
	ValueType     string          `json:"valueType"`
	Categories    json.RawMessage `json:"categories"`
}

// Label resolves the variable label for lang when Mica sent it as a list of
// localized values.
func (v VariableSummary) Label(lang string) option.Option[string] {
	var labels Localized
	if len(v.VariableLabel) == 0 || json.Unmarshal(v.VariableLabel, &labels) != nil {
		return option.None[string]()
	}
	return labels.Resolve(lang)
}

var emptyCategories = json.RawMessage(`[]`)

// Summarize projects raw variable records onto VariableSummary, keeping their
// order. A missing categories key becomes an empty list; any other missing
// key is an error.
func Summarize(raw []map[string]json.RawMessage) ([]VariableSummary, error) {
	out := make([]VariableSummary, 0, len(raw))
	for i, record := range raw {
		s, err := summarize(record)
		if err != nil {
			err.Path = fmt.Sprintf("summaries[%d].%s", i, err.Path)
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func summarize(record map[string]json.RawMessage) (VariableSummary, *SchemaValidationError) {
	var (
		s   VariableSummary
		err *SchemaValidationError
	)
	text := func(key string, dst *string) {
		if err != nil {
			return
		}
		v, ok := record[key]
		if !ok {
			err = &SchemaValidationError{Entity: entityVariables, Path: key, Reason: "required field is missing"}
			return
		}
		if e := json.Unmarshal(v, dst); e != nil || string(v) == "null" {
			err = &SchemaValidationError{Entity: entityVariables, Path: key, Reason: "expected string"}
		}
	}
	rawField := func(key string, dst *json.RawMessage) {
		if err != nil {
			return
		}
		v, ok := record[key]
		if !ok {
			err = &SchemaValidationError{Entity: entityVariables, Path: key, Reason: "required field is missing"}
			return
		}
		*dst = v
	}

	text("id", &s.ID)
	text("name", &s.Name)
	text("variableType", &s.VariableType)
	rawField("variableLabel", &s.VariableLabel)
	rawField("annotations", &s.Annotations)
	text("valueType", &s.ValueType)
	if err != nil {
		return VariableSummary{}, err
	}

	s.Categories = emptyCategories
	if v, ok := record["categories"]; ok {
		s.Categories = v
	}
	return s, nil
}

// variableSearch is the envelope of a variable RQL search.
type variableSearch struct {
	VariableResultDto *struct {
		TotalHits *int `json:"totalHits"`
		Result    *struct {
			Summaries []map[string]json.RawMessage `json:"summaries"`
		} `json:"obiba.mica.DatasetVariableResultDto.result"`
	} `json:"variableResultDto"`
}

func decodeVariableSearch(body []byte) (variableSearch, error) {
	var res variableSearch
	if err := json.Unmarshal(body, &res); err != nil {
		return variableSearch{}, schemaError(entityVariables, aliasTable{}, err)
	}
	if res.VariableResultDto == nil {
		return variableSearch{}, &SchemaValidationError{
			Entity: entityVariables,
			Path:   "variableResultDto",
			Reason: "required field is missing",
		}
	}
	return res, nil
}

// totalHits reads the hit count from a search response.
func totalHits(body []byte) (int, error) {
	res, err := decodeVariableSearch(body)
	if err != nil {
		return 0, err
	}
	if res.VariableResultDto.TotalHits == nil {
		return 0, &SchemaValidationError{
			Entity: entityVariables,
			Path:   "variableResultDto.totalHits",
			Reason: "required field is missing",
		}
	}
	return *res.VariableResultDto.TotalHits, nil
}

// summaries reads the variable records from a search response.
func summaries(body []byte) ([]VariableSummary, error) {
	res, err := decodeVariableSearch(body)
	if err != nil {
		return nil, err
	}
	result := res.VariableResultDto.Result
	if result == nil || result.Summaries == nil {
		return nil, &SchemaValidationError{
			Entity: entityVariables,
			Path:   "variableResultDto.obiba.mica.DatasetVariableResultDto.result.summaries",
			Reason: "required field is missing",
		}
	}
	out, err := Summarize(result.Summaries)
	if err != nil {
		return nil, err
	}
	return out, nil
}
