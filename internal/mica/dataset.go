package mica

import (
	"encoding/json"
)

const entityDataset = "dataset"

var datasetAliases = newAliasTable(map[string]string{
	"collectedDataset": "obiba.mica.CollectedDatasetDto.type",
	"datasetState":     "obiba.mica.EntityStateDto.datasetState",
})

// StudyTable links a collected dataset to the study, population and data
// collection event it was harmonized from.
type StudyTable struct {
	Project               string `json:"project"               validate:"required"`
	Table                 string `json:"table"                 validate:"required"`
	StudyID               string `json:"studyId"               validate:"required"`
	PopulationID          string `json:"populationId"          validate:"required"`
	DataCollectionEventID string `json:"dataCollectionEventId" validate:"required"`
	DceID                 string `json:"dceId,omitempty"`
	Weight                *int   `json:"weight"                validate:"required"`
}

type CollectedDataset struct {
	StudyTable *StudyTable `json:"studyTable" validate:"required"`
}

type EntityState struct {
	RevisionsAhead int    `json:"revisionsAhead"`
	RevisionStatus string `json:"revisionStatus"`
}

// Dataset is a Mica collected dataset as served by the draft API.
type Dataset struct {
	ID               string            `json:"id"                     validate:"required"`
	Name             Localized         `json:"name"                   validate:"required,dive"`
	Acronym          Localized         `json:"acronym"                validate:"required,dive"`
	Description      Localized         `json:"description"            validate:"required,dive"`
	EntityType       string            `json:"entityType"             validate:"required"`
	Published        *bool             `json:"published"              validate:"required"`
	Timestamps       Timestamps        `json:"timestamps"`
	VariableType     string            `json:"variableType"           validate:"required"`
	Content          Content           `json:"content"                validate:"required"`
	CollectedDataset *CollectedDataset `json:"collectedDataset"       validate:"required"`
	DatasetState     *EntityState      `json:"datasetState,omitempty"`
}

// ParseDataset decodes and validates a dataset payload. Content is left in
// the form it was received in.
func ParseDataset(data []byte) (Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return Dataset{}, schemaError(entityDataset, datasetAliases, err)
	}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

func (d Dataset) Validate() error {
	return validateEntity(entityDataset, d)
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	type plain Dataset
	renamed, err := datasetAliases.decode(data)
	if err != nil {
		return err
	}
	var p plain
	if err := json.Unmarshal(renamed, &p); err != nil {
		return err
	}
	*d = Dataset(p)
	return nil
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	data, err := json.Marshal(plain(d))
	if err != nil {
		return nil, err
	}
	return datasetAliases.encode(data)
}

func (d Dataset) studyTable() StudyTable {
	if d.CollectedDataset == nil || d.CollectedDataset.StudyTable == nil {
		return StudyTable{}
	}
	return *d.CollectedDataset.StudyTable
}

// StudyID is the join key to the dataset's study. It is never empty on a
// validated dataset.
func (d Dataset) StudyID() string {
	return d.studyTable().StudyID
}

func (d Dataset) PopulationID() string {
	return d.studyTable().PopulationID
}

func (d Dataset) DataCollectionEventID() string {
	return d.studyTable().DataCollectionEventID
}

func (d Dataset) Table() string {
	return d.studyTable().Table
}

func (d Dataset) Project() string {
	return d.studyTable().Project
}
