package mart

import (
	"fmt"
	"strings"

	"martdrop/pkg/errors"
	"martdrop/pkg/models"
)

// Built-in mart kinds. Each mirrors one consumption pattern: a flat
// denormalized projection, additive monthly counts, a filtered
// priority snapshot, and a multi-dimensional hiring fact.
const (
	KindFlat     = "flat"
	KindMonthly  = "monthly"
	KindPriority = "priority"
	KindHiring   = "hiring"
)

// defaultColumns are the compared columns per kind when a reconcile
// strategy is used and the config does not override them.
var defaultColumns = map[string][]string{
	KindFlat:     {"title", "company_name", "skill_name", "via", "posted_at", "salary_year_avg"},
	KindMonthly:  {"postings", "avg_salary_year"},
	KindPriority: {"title", "company_name", "posted_at", "salary_year_avg", "demand_score", "priority"},
	KindHiring:   {"hires"},
}

// defaultKeys are the identifier columns per kind.
var defaultKeys = map[string]string{
	KindFlat:     "flat_id",
	KindMonthly:  "month_company",
	KindPriority: "job_id",
	KindHiring:   "hiring_key",
}

// Query renders the snapshot query for a mart against the warehouse
// schema. Custom marts supply their own SQL.
func Query(m models.Mart, warehouseSchema string) (string, error) {
	switch m.Kind {
	case KindFlat:
		return renderFlat(warehouseSchema), nil
	case KindMonthly:
		return renderMonthly(warehouseSchema), nil
	case KindPriority:
		return renderPriority(warehouseSchema, m.Titles), nil
	case KindHiring:
		return renderHiring(warehouseSchema), nil
	case "":
		if m.Query == "" {
			return "", errors.New(errors.ErrCodeConfigInvalid, "Mart has neither a kind nor a query").
				WithContext("mart", m.Name)
		}
		return m.Query, nil
	default:
		return "", errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("Unknown mart kind %q", m.Kind)).
			WithContext("mart", m.Name).
			WithSuggestions("Valid kinds: flat, monthly, priority, hiring")
	}
}

// KeyColumn returns the mart's identifier column, defaulting by kind.
func KeyColumn(m models.Mart) string {
	if m.Key != "" {
		return m.Key
	}
	return defaultKeys[m.Kind]
}

// ComparedColumns returns the attribute columns a reconcile run
// compares, defaulting by kind.
func ComparedColumns(m models.Mart) []string {
	if len(m.Columns) > 0 {
		return m.Columns
	}
	return defaultColumns[m.Kind]
}

// renderFlat denormalizes the star into one row per job and skill.
// The key concatenates both ids; arithmetic packing would collide once
// either id outgrows its allotted digits.
func renderFlat(schema string) string {
	return fmt.Sprintf(`SELECT f.job_id || '|' || b.skill_id AS flat_id,
       f.title,
       c.company_name,
       k.skill_name,
       f.via,
       f.posted_at,
       f.salary_year_avg
FROM %[1]s.fact_job f
JOIN %[1]s.dim_company c ON c.company_id = f.company_id
JOIN %[1]s.bridge_job_skill b ON b.job_id = f.job_id
JOIN %[1]s.dim_skill k ON k.skill_id = b.skill_id`, schema)
}

// renderMonthly produces additive month-by-company posting counts.
func renderMonthly(schema string) string {
	return fmt.Sprintf(`SELECT strftime(date_trunc('month', f.posted_at), '%%Y-%%m') || '|' || c.company_name AS month_company,
       strftime(date_trunc('month', f.posted_at), '%%Y-%%m') AS month,
       c.company_name,
       count(*) AS postings,
       round(avg(f.salary_year_avg), 2) AS avg_salary_year
FROM %[1]s.fact_job f
JOIN %[1]s.dim_company c ON c.company_id = f.company_id
GROUP BY 1, 2, 3`, schema)
}

// renderPriority filters to tracked titles and scores demand with a
// log transform, ranking titles by score.
func renderPriority(schema string, titles []string) string {
	if len(titles) == 0 {
		titles = []string{"Data Engineer", "Data Scientist", "Data Analyst"}
	}
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = "'" + strings.ReplaceAll(t, "'", "''") + "'"
	}

	return fmt.Sprintf(`WITH tracked AS (
    SELECT f.job_id, f.title, c.company_name, f.posted_at, f.salary_year_avg
    FROM %[1]s.fact_job f
    JOIN %[1]s.dim_company c ON c.company_id = f.company_id
    WHERE f.title IN (%[2]s)
), scored AS (
    SELECT t.*, count(*) OVER (PARTITION BY title) AS openings
    FROM tracked t
)
SELECT job_id,
       title,
       company_name,
       posted_at,
       salary_year_avg,
       round(ln(1 + openings), 4) AS demand_score,
       dense_rank() OVER (ORDER BY ln(1 + openings) DESC) AS priority
FROM scored`, schema, strings.Join(quoted, ", "))
}

// renderHiring produces the company by skill by month hiring fact.
func renderHiring(schema string) string {
	return fmt.Sprintf(`SELECT strftime(date_trunc('month', f.posted_at), '%%Y-%%m') || '|' || c.company_name || '|' || k.skill_name AS hiring_key,
       strftime(date_trunc('month', f.posted_at), '%%Y-%%m') AS month,
       c.company_name,
       k.skill_name,
       count(*) AS hires
FROM %[1]s.fact_job f
JOIN %[1]s.dim_company c ON c.company_id = f.company_id
JOIN %[1]s.bridge_job_skill b ON b.job_id = f.job_id
JOIN %[1]s.dim_skill k ON k.skill_id = b.skill_id
GROUP BY 1, 2, 3, 4`, schema)
}
