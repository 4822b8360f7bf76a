package mica_test

const datasetJSON = `{
  "id": "ds1",
  "name": [{"lang": "en", "value": "Baseline"}, {"lang": "fr", "value": "Base"}],
  "acronym": [{"lang": "en", "value": "BL"}],
  "description": [{"lang": "en", "value": "Baseline questionnaire"}],
  "entityType": "Dataset",
  "published": true,
  "timestamps": {"created": "2021-06-15T00:00:00.000Z", "updated": "2022-01-02T03:04:05.678Z"},
  "variableType": "Collected",
  "content": "{\"a\":1}",
  "obiba.mica.CollectedDatasetDto.type": {
    "studyTable": {
      "project": "cag",
      "table": "baseline",
      "studyId": "st1",
      "populationId": "pop1",
      "dataCollectionEventId": "dce1",
      "dceId": "st1:pop1:dce1",
      "weight": 0
    }
  },
  "obiba.mica.EntityStateDto.datasetState": {"revisionsAhead": 0, "revisionStatus": "DRAFT"},
  "permissions": {"view": true}
}`

const studyJSON = `{
  "id": "st1",
  "timestamps": {"created": "2020-01-01T10:00:00.000Z"},
  "name": [{"lang": "en", "value": "CARTaGENE"}],
  "acronym": [{"lang": "en", "value": "CAG"}],
  "objectives": [{"lang": "en", "value": "Study health"}],
  "populations": [
    {
      "id": "pop1",
      "name": [{"lang": "en", "value": "Adults"}],
      "description": [{"lang": "en", "value": "Aged 40 to 69"}],
      "content": "{\"selectionCriteria\":{\"ageMin\":40}}",
      "weight": 0,
      "dataCollectionEvents": [
        {"id": "dce1", "startDate": "2009-01", "content": "{\"model\":{\"dataSources\":[\"questionnaires\"]}}", "weight": 0}
      ]
    }
  ],
  "content": "{\"methods\":{\"design\":\"cohort\"}}",
  "published": false,
  "studyResourcePath": "individual-study"
}`

const variablesJSON = `{
  "variableResultDto": {
    "totalHits": 2,
    "obiba.mica.DatasetVariableResultDto.result": {
      "summaries": [
        {
          "id": "ds1:AGE:Collected",
          "name": "AGE",
          "variableType": "Collected",
          "variableLabel": [{"lang": "en", "value": "Age"}],
          "annotations": [],
          "valueType": "integer",
          "datasetId": "ds1",
          "studyId": "st1"
        },
        {
          "id": "ds1:SEX:Collected",
          "name": "SEX",
          "variableType": "Collected",
          "variableLabel": [{"lang": "en", "value": "Sex"}],
          "annotations": [{"taxonomy": "Mlstr_area", "vocabulary": "Sociodemographic", "value": "sex"}],
          "valueType": "text",
          "categories": [{"name": "F"}, {"name": "M"}],
          "datasetId": "ds1"
        }
      ]
    }
  }
}`
