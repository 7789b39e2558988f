package mart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martdrop/pkg/models"
)

func TestQuery(t *testing.T) {
	tests := []struct {
		name     string
		mart     models.Mart
		contains []string
		wantErr  bool
	}{
		{
			name: "flat denormalizes the star",
			mart: models.Mart{Name: "mart_flat", Kind: KindFlat},
			contains: []string{
				"f.job_id || '|' || b.skill_id AS flat_id",
				"JOIN warehouse.dim_company",
				"JOIN warehouse.bridge_job_skill",
				"JOIN warehouse.dim_skill",
			},
		},
		{
			name: "monthly groups by month and company",
			mart: models.Mart{Name: "mart_monthly", Kind: KindMonthly},
			contains: []string{
				"date_trunc('month', f.posted_at)",
				"count(*) AS postings",
				"GROUP BY",
			},
		},
		{
			name: "priority filters tracked titles and scores with a log transform",
			mart: models.Mart{Name: "mart_priority", Kind: KindPriority, Titles: []string{"Data Engineer"}},
			contains: []string{
				"WHERE f.title IN ('Data Engineer')",
				"count(*) OVER (PARTITION BY title) AS openings",
				"ln(1 + openings)",
				"dense_rank()",
			},
		},
		{
			name: "hiring is company by skill by month",
			mart: models.Mart{Name: "mart_hiring", Kind: KindHiring},
			contains: []string{
				"count(*) AS hires",
				"JOIN warehouse.dim_skill",
				"date_trunc('month', f.posted_at)",
			},
		},
		{
			name:     "custom query passes through",
			mart:     models.Mart{Name: "custom", Query: "SELECT 1 AS x"},
			contains: []string{"SELECT 1 AS x"},
		},
		{
			name:    "unknown kind fails",
			mart:    models.Mart{Name: "bad", Kind: "quarterly"},
			wantErr: true,
		},
		{
			name:    "no kind and no query fails",
			mart:    models.Mart{Name: "empty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := Query(tt.mart, "warehouse")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, query, want)
			}
		})
	}
}

func TestPriorityTitlesAreQuoted(t *testing.T) {
	query, err := Query(models.Mart{
		Name:   "mart_priority",
		Kind:   KindPriority,
		Titles: []string{"O'Reilly Analyst"},
	}, "warehouse")
	require.NoError(t, err)

	assert.Contains(t, query, "'O''Reilly Analyst'")
}

func TestKeyColumnDefaults(t *testing.T) {
	assert.Equal(t, "job_id", KeyColumn(models.Mart{Kind: KindPriority}))
	assert.Equal(t, "month_company", KeyColumn(models.Mart{Kind: KindMonthly}))
	assert.Equal(t, "custom_id", KeyColumn(models.Mart{Kind: KindPriority, Key: "custom_id"}))
}

func TestComparedColumnsDefaults(t *testing.T) {
	assert.Equal(t,
		[]string{"title", "company_name", "posted_at", "salary_year_avg", "demand_score", "priority"},
		ComparedColumns(models.Mart{Kind: KindPriority}),
	)
	assert.Equal(t,
		[]string{"a", "b"},
		ComparedColumns(models.Mart{Kind: KindPriority, Columns: []string{"a", "b"}}),
	)
}

func TestRenderReplace(t *testing.T) {
	sql := RenderReplace("marts", "mart_flat", "SELECT 1")

	assert.Contains(t, sql, "CREATE SCHEMA IF NOT EXISTS marts")
	assert.Contains(t, sql, "DROP TABLE IF EXISTS marts.mart_flat")
	assert.Contains(t, sql, "CREATE TABLE marts.mart_flat AS\nSELECT 1")
}
