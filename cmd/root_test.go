package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/transport"
)

const (
	datasetJSON = `{
  "id": "ds1",
  "name": [{"lang": "en", "value": "Baseline"}],
  "acronym": [{"lang": "en", "value": "BL"}],
  "description": [{"lang": "en", "value": "Baseline questionnaire"}],
  "entityType": "Dataset",
  "published": true,
  "timestamps": {"created": "2021-06-15T00:00:00.000Z"},
  "variableType": "Collected",
  "content": "{\"a\":1}",
  "obiba.mica.CollectedDatasetDto.type": {
    "studyTable": {"project": "cag", "table": "baseline", "studyId": "st1", "populationId": "pop1",
      "dataCollectionEventId": "dce1", "weight": 0}
  }
}`
	studyJSON = `{
  "id": "st1",
  "timestamps": {"created": "2019-01-01T00:00:00.000Z"},
  "name": [{"lang": "en", "value": "CARTaGENE"}],
  "acronym": [{"lang": "en", "value": "CAG"}],
  "objectives": [{"lang": "en", "value": "Study health"}],
  "populations": [{
    "id": "pop1",
    "name": [{"lang": "en", "value": "Adults"}],
    "description": [{"lang": "en", "value": "Aged 40 to 69"}],
    "content": "{}",
    "weight": 0,
    "dataCollectionEvents": [{"id": "dce1", "content": "{\"b\":2}", "weight": 0}]
  }],
  "content": "{\"methods\":{}}",
  "published": true,
  "studyResourcePath": "individual-study"
}`
	variablesJSON = `{"variableResultDto":{"totalHits":1,"obiba.mica.DatasetVariableResultDto.result":{"summaries":[` +
		`{"id":"ds1:AGE:Collected","name":"AGE","variableType":"Collected",` +
		`"variableLabel":[{"lang":"en","value":"Age"}],"annotations":[],"valueType":"integer"}]}}}`
	doiJSON = `{
  "mica": {
    "prefix": "10.1234",
    "suffix": "abcd",
    "language": "en",
    "publisher": "Maelstrom Research",
    "resourceTypeGeneral": "Dataset",
    "resourceType": "Collected dataset",
    "creators": [{"name": "CARTaGENE", "affiliation": "CHU Sainte-Justine"}]
  }
}`
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func micaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "reader" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/ws/draft/collected-dataset/ds1":
			_, _ = w.Write([]byte(datasetJSON))
		case r.URL.Path == "/ws/draft/individual-study/st1":
			_, _ = w.Write([]byte(studyJSON))
		case r.URL.Path == "/ws/variables/_rql":
			// a single hit, so the count query is the only search
			assert.Contains(t, r.URL.RawQuery, "limit(0,1)")
			_, _ = w.Write([]byte(variablesJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// extractBundle runs the extract command against a fake Mica and returns the
// path of the written bundle.
func extractBundle(t *testing.T, dir string) string {
	t.Helper()
	srv := micaServer(t)
	output := filepath.Join(dir, "bundle.json")
	out, err := run(t, "extract", "ds1",
		"--config", writeFile(t, dir, "config.yaml", "{}\n"),
		"--mica-host", srv.URL,
		"--mica-username", "reader",
		"--mica-password", "secret",
		"--extract-output", output,
		"--extract-variables-csv", filepath.Join(dir, "variables.csv"),
	)
	require.NoError(t, err)
	assert.Empty(t, out)
	return output
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands")
	for _, name := range []string{"extract", "doi", "bundle", "version", "config"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--config", writeFile(t, t.TempDir(), "config.yaml", "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestConfigPrintMasksPasswords(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "mica:\n  password: hunter2\n")
	out, err := run(t, "config", "print", "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
}

func TestExtractWritesBundleAndCSV(t *testing.T) {
	dir := t.TempDir()
	path := extractBundle(t, dir)

	b, err := mica.LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "ds1", b.Dataset.ID)
	assert.Equal(t, "st1", b.Study.ID)
	assert.True(t, strings.HasSuffix(b.Metadata.URL, "/dataset/ds1"))
	require.Len(t, b.Variables, 1)

	csv, err := os.ReadFile(filepath.Join(dir, "variables.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "ds1:AGE:Collected,AGE,Collected,integer,Age")
}

func TestExtractToStdout(t *testing.T) {
	dir := t.TempDir()
	srv := micaServer(t)
	out, err := run(t, "extract", "ds1",
		"--config", writeFile(t, dir, "config.yaml", "{}\n"),
		"--mica-host", srv.URL,
		"--mica-username", "reader",
		"--mica-password", "secret",
		"--extract-output", "",
		"--extract-variables-csv", "",
	)
	require.NoError(t, err)
	b, err := mica.ParseBundle([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "ds1", b.Dataset.ID)
}

func TestExtractReportsTransportError(t *testing.T) {
	dir := t.TempDir()
	srv := micaServer(t)
	_, err := run(t, "extract", "ds1",
		"--config", writeFile(t, dir, "config.yaml", "{}\n"),
		"--mica-host", srv.URL,
		"--mica-username", "reader",
		"--mica-password", "wrong",
		"--extract-output", filepath.Join(dir, "bundle.json"),
		"--extract-variables-csv", "",
	)
	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusUnauthorized, terr.StatusCode)
	assert.NoFileExists(t, filepath.Join(dir, "bundle.json"))
}

func TestBundleValidate(t *testing.T) {
	dir := t.TempDir()
	path := extractBundle(t, dir)

	out, err := run(t, "bundle", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dataset ds1, study st1, 1 variables")

	bad := writeFile(t, dir, "bad.json", `{"metadata": {"url": "u"}, "study": {}}`)
	_, err = run(t, "bundle", "validate", bad)
	var serr *mica.SchemaValidationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "dataset", serr.Path)
}

func TestDOIGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	path := extractBundle(t, dir)

	out, err := run(t, "doi", "generate", path,
		"--doi-config", writeFile(t, dir, "doi.json", doiJSON),
		"--doi-dry-run",
	)
	require.NoError(t, err)

	var req struct {
		Data struct {
			Type       string         `json:"type"`
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "dois", req.Data.Type)
	assert.Equal(t, "10.1234", req.Data.Attributes["prefix"])
	assert.Equal(t, "Maelstrom Research", req.Data.Attributes["publisher"])
}

func TestDOIGenerateRegisters(t *testing.T) {
	dir := t.TempDir()
	path := extractBundle(t, dir)

	var got *http.Request
	datacite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"10.1234/abcd","attributes":{"state":"draft"}}}`))
	}))
	defer datacite.Close()

	out, err := run(t, "doi", "generate", path,
		"--doi-config", writeFile(t, dir, "doi.json", doiJSON),
		"--doi-dry-run=false",
		"--datacite-host", datacite.URL,
		"--datacite-username", "REPO.ID",
		"--datacite-password", "pw",
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/dois/", got.URL.Path)
	user, _, _ := got.BasicAuth()
	assert.Equal(t, "REPO.ID", user)
	assert.Contains(t, out, `"state": "draft"`)
}

func TestDOIGetNotFound(t *testing.T) {
	datacite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":"404","title":"The resource you are looking for doesn't exist."}]}`))
	}))
	defer datacite.Close()

	_, err := run(t, "doi", "get", "10.1234/missing",
		"--config", writeFile(t, t.TempDir(), "config.yaml", "{}\n"),
		"--datacite-host", datacite.URL,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get doi")
	var terr *transport.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
}

func TestDOIUpdateRejectsNonObject(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "doi", "update", "10.1234/abcd", writeFile(t, dir, "attrs.json", `["not", "an", "object"]`),
		"--config", writeFile(t, dir, "config.yaml", "{}\n"),
		"--datacite-username", "REPO.ID",
		"--datacite-password", "pw",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a JSON object")
}
