package mica

import "fmt"

const (
	entityPopulation          = "population"
	entityDataCollectionEvent = "dataCollectionEvent"
)

// NormalizeDataset decodes the dataset's embedded content in place.
func NormalizeDataset(d *Dataset) error {
	if err := d.Content.Normalize(); err != nil {
		return &ContentDecodeError{Entity: entityDataset, ID: d.ID, Path: "content", Err: err}
	}
	return nil
}

// NormalizeStudy decodes the embedded content of the study, of each of its
// populations and of each of their data collection events. The first
// malformed document aborts the pass.
func NormalizeStudy(s *Study) error {
	if err := s.Content.Normalize(); err != nil {
		return &ContentDecodeError{Entity: entityStudy, ID: s.ID, Path: "content", Err: err}
	}
	for i := range s.Populations {
		p := &s.Populations[i]
		if err := p.Content.Normalize(); err != nil {
			return &ContentDecodeError{
				Entity: entityPopulation,
				ID:     p.ID,
				Path:   fmt.Sprintf("populations[%d].content", i),
				Err:    err,
			}
		}
		for j := range p.DataCollectionEvents {
			dce := &p.DataCollectionEvents[j]
			if err := dce.Content.Normalize(); err != nil {
				return &ContentDecodeError{
					Entity: entityDataCollectionEvent,
					ID:     dce.ID,
					Path:   fmt.Sprintf("populations[%d].dataCollectionEvents[%d].content", i, j),
					Err:    err,
				}
			}
		}
	}
	return nil
}
