package warehouse

import "fmt"

// Star-schema DDL for the job postings warehouse. One fact table, two
// dimensions, one bridge resolving the job/skill many-to-many.
const ddlTemplate = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.dim_company (
    company_id   INTEGER PRIMARY KEY,
    company_name VARCHAR NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS %[1]s.dim_skill (
    skill_id   INTEGER PRIMARY KEY,
    skill_name VARCHAR NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS %[1]s.fact_job (
    job_id          INTEGER PRIMARY KEY,
    company_id      INTEGER NOT NULL REFERENCES %[1]s.dim_company (company_id),
    title           VARCHAR NOT NULL,
    via             VARCHAR,
    posted_at       TIMESTAMP,
    salary_year_avg DOUBLE,
    salary_hour_avg DOUBLE
);

CREATE TABLE IF NOT EXISTS %[1]s.bridge_job_skill (
    skill_id INTEGER NOT NULL REFERENCES %[1]s.dim_skill (skill_id),
    job_id   INTEGER NOT NULL REFERENCES %[1]s.fact_job (job_id),
    PRIMARY KEY (skill_id, job_id)
);
`

// RenderDDL returns the schema-creation script for the given schema name.
func RenderDDL(schema string) string {
	return fmt.Sprintf(ddlTemplate, schema)
}

// RenderStaging returns the statement loading a remote CSV extract into
// its landing table verbatim. Column types come from CSV inference.
func RenderStaging(schema, landing, url string) string {
	return fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s.%s AS SELECT * FROM read_csv('%s', header = true)",
		schema, landing, url,
	)
}

// RenderDimensionLoad returns the statement that rebuilds a dimension
// from the distinct values of a staged natural-key column. Surrogate
// keys are the 1-based rank of each value under lexicographic order,
// so the mapping is deterministic and independent of physical row order.
func RenderDimensionLoad(schema, dimension, keyCol, nameCol, staging, sourceCol string) string {
	return fmt.Sprintf(`INSERT INTO %[1]s.%[2]s (%[3]s, %[4]s)
SELECT row_number() OVER (ORDER BY %[7]s) AS %[3]s, %[7]s AS %[4]s
FROM (SELECT DISTINCT %[7]s FROM %[1]s.%[5]s WHERE %[7]s IS NOT NULL) AS distinct_%[6]s`,
		schema, dimension, keyCol, nameCol, staging, dimension, sourceCol,
	)
}

// RenderDimensionAppend returns the statement adding natural keys that
// arrived in a fresh extract without touching existing rows, so
// surrogate keys already handed out stay stable across refreshes. New
// values rank above the current maximum.
func RenderDimensionAppend(schema, dimension, keyCol, nameCol, staging, sourceCol string) string {
	return fmt.Sprintf(`INSERT INTO %[1]s.%[2]s (%[3]s, %[4]s)
SELECT (SELECT coalesce(max(%[3]s), 0) FROM %[1]s.%[2]s) + row_number() OVER (ORDER BY %[7]s) AS %[3]s,
       %[7]s AS %[4]s
FROM (SELECT DISTINCT %[7]s FROM %[1]s.%[5]s s
      WHERE %[7]s IS NOT NULL
      AND NOT EXISTS (SELECT 1 FROM %[1]s.%[2]s d WHERE d.%[4]s = s.%[7]s)) AS new_%[6]s`,
		schema, dimension, keyCol, nameCol, staging, dimension, sourceCol,
	)
}

// RenderFactSource returns the query projecting staged jobs into the
// fact shape, swapping the company natural key for its surrogate.
func RenderFactSource(schema, staging string) string {
	return fmt.Sprintf(`SELECT s.job_id,
       c.company_id,
       s.title,
       s.via,
       s.posted_at,
       s.salary_year_avg,
       s.salary_hour_avg
FROM %[1]s.%[2]s s
JOIN %[1]s.dim_company c ON c.company_name = s.company_name`,
		schema, staging,
	)
}

// RenderFactLoad returns the statement populating the fact table from
// staged jobs.
func RenderFactLoad(schema, staging string) string {
	return fmt.Sprintf("INSERT INTO %s.fact_job\n%s", schema, RenderFactSource(schema, staging))
}

// RenderBridgeLoad returns the statement populating the job/skill
// bridge from the staged skills extract. The joins guarantee both
// referenced keys exist; DISTINCT collapses duplicate pairings.
func RenderBridgeLoad(schema, skillStaging string) string {
	return fmt.Sprintf(`INSERT INTO %[1]s.bridge_job_skill
SELECT DISTINCT k.skill_id, f.job_id
FROM %[1]s.%[2]s s
JOIN %[1]s.dim_skill k ON k.skill_name = s.skill_name
JOIN %[1]s.fact_job f ON f.job_id = s.job_id`,
		schema, skillStaging,
	)
}

// FactKey is the stable identifier column of the fact table.
const FactKey = "job_id"

// FactColumns lists the fact columns compared during an incremental
// refresh; a row whose compared columns all match is left untouched.
func FactColumns() []string {
	return []string{"company_id", "title", "via", "posted_at", "salary_year_avg", "salary_hour_avg"}
}

// RenderTruncate returns the deletes that empty the star tables before
// a rebuild, in FK-safe order (bridge, fact, dimensions).
func RenderTruncate(schema string) string {
	return fmt.Sprintf(`DELETE FROM %[1]s.bridge_job_skill;
DELETE FROM %[1]s.fact_job;
DELETE FROM %[1]s.dim_company;
DELETE FROM %[1]s.dim_skill`,
		schema,
	)
}
