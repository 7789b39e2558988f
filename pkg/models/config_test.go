package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigUnmarshal(t *testing.T) {
	data := `
warehouse:
  path: jobs.duckdb
  schema: warehouse
  mart_schema: marts
  use_keyring: true
sources:
  - name: jobs
    url: https://example.com/jobs.csv
    landing: stg_jobs
marts:
  - name: mart_priority
    kind: priority
    strategy: reconcile
    key: job_id
    titles:
      - Data Engineer
      - Data Scientist
pipeline:
  skip:
    - marts
`

	var config Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &config))

	assert.Equal(t, "jobs.duckdb", config.Warehouse.Path)
	assert.True(t, config.Warehouse.UseKeyring)
	assert.Len(t, config.Sources, 1)
	assert.Equal(t, "stg_jobs", config.Sources[0].Landing)

	require.Len(t, config.Marts, 1)
	assert.Equal(t, StrategyReconcile, config.Marts[0].Strategy)
	assert.Equal(t, []string{"Data Engineer", "Data Scientist"}, config.Marts[0].Titles)

	assert.Equal(t, []string{"marts"}, config.Pipeline.Skip)
}

func TestConfigMarshalRoundtrip(t *testing.T) {
	config := Config{
		Warehouse: Warehouse{Path: "w.duckdb", Schema: "warehouse"},
		Marts: []Mart{
			{Name: "mart_flat", Kind: "flat", Strategy: StrategyReplace},
		},
	}

	data, err := yaml.Marshal(&config)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, config, loaded)
}
