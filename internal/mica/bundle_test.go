package mica_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

func bundleJSON(dataset, study string) string {
	return `{"metadata":{"url":"https://mica.example.org/dataset/ds1"},"dataset":` + dataset +
		`,"study":` + study + `,"variables":[]}`
}

func TestParseBundleNormalizesContent(t *testing.T) {
	t.Parallel()
	b, err := mica.ParseBundle([]byte(bundleJSON(datasetJSON, studyJSON)))
	require.NoError(t, err)

	assert.Equal(t, "https://mica.example.org/dataset/ds1", b.Metadata.URL)
	assert.True(t, b.Dataset.Content.Decoded())
	assert.True(t, b.Study.Content.Decoded())
	assert.True(t, b.Study.Populations[0].DataCollectionEvents[0].Content.Decoded())
	assert.NotNil(t, b.Variables)
}

func TestBundleEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	b, err := mica.ParseBundle([]byte(bundleJSON(datasetJSON, studyJSON)))
	require.NoError(t, err)

	data, err := b.Encode()
	require.NoError(t, err)

	var wire map[string]map[string]json.RawMessage
	_ = json.Unmarshal(data, &wire)
	assert.JSONEq(t, `{"a":1}`, string(wire["dataset"]["content"]))
	assert.Contains(t, wire["dataset"], "obiba.mica.CollectedDatasetDto.type")

	again, err := mica.ParseBundle(data)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestParseBundleRejectsMismatchedStudy(t *testing.T) {
	t.Parallel()
	var study map[string]any
	require.NoError(t, json.Unmarshal([]byte(studyJSON), &study))
	study["id"] = "other"
	raw, err := json.Marshal(study)
	require.NoError(t, err)

	_, err = mica.ParseBundle([]byte(bundleJSON(datasetJSON, string(raw))))
	var serr *mica.SchemaValidationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "study.id", serr.Path)
}

func TestParseBundleRejectsBadContent(t *testing.T) {
	t.Parallel()
	var dataset map[string]any
	require.NoError(t, json.Unmarshal([]byte(datasetJSON), &dataset))
	dataset["content"] = "not json"
	raw, err := json.Marshal(dataset)
	require.NoError(t, err)

	_, err = mica.ParseBundle([]byte(bundleJSON(string(raw), studyJSON)))
	var cerr *mica.ContentDecodeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "dataset", cerr.Entity)
}

func TestParseBundleRequiresParts(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		doc  string
		path string
	}{
		"metadata": {doc: `{"dataset":{},"study":{}}`, path: "metadata"},
		"dataset":  {doc: `{"metadata":{"url":""},"study":{}}`, path: "dataset"},
		"study":    {doc: `{"metadata":{"url":""},"dataset":` + datasetJSON + `}`, path: "study"},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := mica.ParseBundle([]byte(tc.doc))
			var serr *mica.SchemaValidationError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tc.path, serr.Path)
		})
	}
}

func TestLoadBundle(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(bundleJSON(datasetJSON, studyJSON)), 0o600))

	b, err := mica.LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "ds1", b.Dataset.ID)

	_, err = mica.LoadBundle(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDatasetURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://mica.example.org/dataset/ds1", mica.DatasetURL("https://mica.example.org/", "ds1"))
}
