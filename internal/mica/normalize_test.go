package mica_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

func TestNormalizeDatasetDecodesContent(t *testing.T) {
	t.Parallel()
	d := mica.Dataset{ID: "ds1", Content: mica.NewEncodedContent(`{"a":1}`)}
	require.NoError(t, mica.NormalizeDataset(&d))

	v, ok := d.Content.Value()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, v)

	data, err := json.Marshal(d.Content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()
	d := mica.Dataset{ID: "ds1", Content: mica.NewEncodedContent(`{"a":[1,2]}`)}
	require.NoError(t, mica.NormalizeDataset(&d))
	once := d.Content
	require.NoError(t, mica.NormalizeDataset(&d))
	assert.Equal(t, once, d.Content)
}

func TestNormalizeDatasetRejectsMalformedContent(t *testing.T) {
	t.Parallel()
	d := mica.Dataset{ID: "ds1", Content: mica.NewEncodedContent("not json")}
	err := mica.NormalizeDataset(&d)

	var cerr *mica.ContentDecodeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "dataset", cerr.Entity)
	assert.Equal(t, "ds1", cerr.ID)
	assert.Equal(t, "content", cerr.Path)
	assert.False(t, d.Content.Decoded())
}

func TestNormalizeStudy(t *testing.T) {
	t.Parallel()
	s, err := mica.ParseStudy([]byte(studyJSON))
	require.NoError(t, err)
	require.NoError(t, mica.NormalizeStudy(&s))

	assert.True(t, s.Content.Decoded())
	require.Len(t, s.Populations, 1)
	assert.True(t, s.Populations[0].Content.Decoded())
	require.Len(t, s.Populations[0].DataCollectionEvents, 1)
	v, ok := s.Populations[0].DataCollectionEvents[0].Content.Value()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"model": map[string]any{"dataSources": []any{"questionnaires"}}}, v)
}

func TestNormalizeStudyNamesFailingEntity(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		breakIt func(*mica.Study)
		entity  string
		id      string
		path    string
	}{
		"study": {
			breakIt: func(s *mica.Study) { s.Content = mica.NewEncodedContent("{") },
			entity:  "study",
			id:      "st1",
			path:    "content",
		},
		"population": {
			breakIt: func(s *mica.Study) { s.Populations[0].Content = mica.NewEncodedContent("[1,") },
			entity:  "population",
			id:      "pop1",
			path:    "populations[0].content",
		},
		"data collection event": {
			breakIt: func(s *mica.Study) {
				s.Populations[0].DataCollectionEvents[0].Content = mica.NewEncodedContent("{} trailing")
			},
			entity: "dataCollectionEvent",
			id:     "dce1",
			path:   "populations[0].dataCollectionEvents[0].content",
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, err := mica.ParseStudy([]byte(studyJSON))
			require.NoError(t, err)
			tc.breakIt(&s)

			err = mica.NormalizeStudy(&s)
			var cerr *mica.ContentDecodeError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tc.entity, cerr.Entity)
			assert.Equal(t, tc.id, cerr.ID)
			assert.Equal(t, tc.path, cerr.Path)
		})
	}
}

func TestContentAcceptsStructuredInput(t *testing.T) {
	t.Parallel()
	var c mica.Content
	require.NoError(t, json.Unmarshal([]byte(`{"b":true}`), &c))
	assert.True(t, c.Present())
	assert.True(t, c.Decoded())

	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.False(t, c.Present())
}

func TestDecodedStringContentRoundTrips(t *testing.T) {
	t.Parallel()
	raw := strings.Replace(datasetJSON, `"content": "{\"a\":1}"`, `"content": "\"hello\""`, 1)
	d, err := mica.ParseDataset([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, mica.NormalizeDataset(&d))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	again, err := mica.ParseDataset(data)
	require.NoError(t, err)
	require.NoError(t, mica.NormalizeDataset(&again))

	v, ok := again.Content.Value()
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestContentEncodesDecodedString(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(mica.NewDecodedContent("hello"))
	require.NoError(t, err)
	assert.Equal(t, `"\"hello\""`, string(data))

	data, err = json.Marshal(mica.NewDecodedContent(map[string]any{"a": "b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, string(data))
}
