package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDDL(t *testing.T) {
	ddl := RenderDDL("warehouse")

	assert.Contains(t, ddl, "CREATE SCHEMA IF NOT EXISTS warehouse")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS warehouse.dim_company")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS warehouse.dim_skill")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS warehouse.fact_job")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS warehouse.bridge_job_skill")

	// Referential integrity is declared, not assumed.
	assert.Contains(t, ddl, "REFERENCES warehouse.dim_company (company_id)")
	assert.Contains(t, ddl, "REFERENCES warehouse.dim_skill (skill_id)")
	assert.Contains(t, ddl, "REFERENCES warehouse.fact_job (job_id)")
	assert.Contains(t, ddl, "PRIMARY KEY (skill_id, job_id)")
}

func TestRenderStaging(t *testing.T) {
	sql := RenderStaging("warehouse", "stg_jobs", "https://example.com/jobs.csv")

	assert.Equal(t,
		"CREATE OR REPLACE TABLE warehouse.stg_jobs AS SELECT * FROM read_csv('https://example.com/jobs.csv', header = true)",
		sql,
	)
}

// Surrogate keys are the rank of each distinct value under a total
// order, so the mapping never depends on physical row order.
func TestRenderDimensionLoad(t *testing.T) {
	sql := RenderDimensionLoad("warehouse", "dim_company", "company_id", "company_name", "stg_jobs", "company_name")

	assert.Contains(t, sql, "INSERT INTO warehouse.dim_company (company_id, company_name)")
	assert.Contains(t, sql, "row_number() OVER (ORDER BY company_name)")
	assert.Contains(t, sql, "SELECT DISTINCT company_name FROM warehouse.stg_jobs")
	assert.Contains(t, sql, "company_name IS NOT NULL")
}

// Appending keeps every surrogate key already handed out, so fact rows
// from prior refreshes stay valid.
func TestRenderDimensionAppendKeepsExistingKeys(t *testing.T) {
	sql := RenderDimensionAppend("warehouse", "dim_company", "company_id", "company_name", "stg_jobs", "company_name")

	assert.Contains(t, sql, "INSERT INTO warehouse.dim_company (company_id, company_name)")
	assert.Contains(t, sql, "coalesce(max(company_id), 0)")
	assert.Contains(t, sql, "row_number() OVER (ORDER BY company_name)")
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM warehouse.dim_company d WHERE d.company_name = s.company_name)")
	assert.NotContains(t, sql, "DELETE")
}

func TestRenderFactSource(t *testing.T) {
	sql := RenderFactSource("warehouse", "stg_jobs")

	assert.True(t, strings.HasPrefix(sql, "SELECT s.job_id"))
	assert.Contains(t, sql, "JOIN warehouse.dim_company c ON c.company_name = s.company_name")
	assert.NotContains(t, sql, "INSERT")
}

func TestFactColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"company_id", "title", "via", "posted_at", "salary_year_avg", "salary_hour_avg"},
		FactColumns(),
	)
	assert.NotContains(t, FactColumns(), FactKey)
}

func TestRenderFactLoad(t *testing.T) {
	sql := RenderFactLoad("warehouse", "stg_jobs")

	assert.Contains(t, sql, "INSERT INTO warehouse.fact_job")
	assert.Contains(t, sql, "JOIN warehouse.dim_company c ON c.company_name = s.company_name")
}

func TestRenderBridgeLoad(t *testing.T) {
	sql := RenderBridgeLoad("warehouse", "stg_skills")

	assert.Contains(t, sql, "INSERT INTO warehouse.bridge_job_skill")
	assert.Contains(t, sql, "SELECT DISTINCT k.skill_id, f.job_id")
	assert.Contains(t, sql, "JOIN warehouse.dim_skill k ON k.skill_name = s.skill_name")
	assert.Contains(t, sql, "JOIN warehouse.fact_job f ON f.job_id = s.job_id")
}

// Deletes run child-first so FK constraints hold mid-script.
func TestRenderTruncateOrder(t *testing.T) {
	sql := RenderTruncate("warehouse")

	bridge := "DELETE FROM warehouse.bridge_job_skill"
	fact := "DELETE FROM warehouse.fact_job"

	assert.Contains(t, sql, bridge)
	assert.Contains(t, sql, fact)
	assert.Less(t, strings.Index(sql, bridge), strings.Index(sql, fact))
}
