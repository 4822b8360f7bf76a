package mica

import (
	"encoding/json"
)

const entityStudy = "study"

// DataCollectionEvent is one wave of data collection within a population.
type DataCollectionEvent struct {
	ID        string  `json:"id,omitempty"`
	StartDate string  `json:"startDate,omitempty"`
	Content   Content `json:"content"             validate:"required"`
	Weight    *int    `json:"weight"              validate:"required"`
}

type Population struct {
	ID                   string                `json:"id"                   validate:"required"`
	Name                 Localized             `json:"name"                 validate:"required,dive"`
	Description          Localized             `json:"description"          validate:"required,dive"`
	EntityType           string                `json:"entityType,omitempty"`
	DataCollectionEvents []DataCollectionEvent `json:"dataCollectionEvents" validate:"required,dive"`
	Content              Content               `json:"content"              validate:"required"`
	Weight               *int                  `json:"weight"               validate:"required"`
}

// Study is a Mica individual study as served by the draft API.
type Study struct {
	ID                string       `json:"id"                validate:"required"`
	Timestamps        Timestamps   `json:"timestamps"`
	Name              Localized    `json:"name"              validate:"required,dive"`
	Acronym           Localized    `json:"acronym"           validate:"required,dive"`
	Objectives        Localized    `json:"objectives"        validate:"required,dive"`
	Populations       []Population `json:"populations"       validate:"required,dive"`
	Content           Content      `json:"content"           validate:"required"`
	Published         *bool        `json:"published"         validate:"required"`
	StudyResourcePath string       `json:"studyResourcePath" validate:"required"`
}

func ParseStudy(data []byte) (Study, error) {
	var s Study
	if err := json.Unmarshal(data, &s); err != nil {
		return Study{}, schemaError(entityStudy, aliasTable{}, err)
	}
	if err := s.Validate(); err != nil {
		return Study{}, err
	}
	return s, nil
}

func (s Study) Validate() error {
	return validateEntity(entityStudy, s)
}

// Population returns the population with the given id.
func (s Study) Population(id string) (Population, bool) {
	for _, p := range s.Populations {
		if p.ID == id {
			return p, true
		}
	}
	return Population{}, false
}
