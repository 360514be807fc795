package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/repository/postgres"
	"github.com/dom/college-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func universityNames(universities []*domain.University) []string {
	names := make([]string, len(universities))
	for i, u := range universities {
		names[i] = u.Name
	}
	return names
}

func TestUniversityRepository_Search(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUniversityRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUniversityBuilder().
		WithName("Massachusetts Institute of Technology").
		WithLocation("USA", "MA", "Cambridge").
		WithRanking(1).
		WithAcceptanceRate(3.9).
		WithApplicationSystem("Direct").
		WithMajors("Computer Science", "Physics").
		Build(t, testDB.DB)
	testutil.NewUniversityBuilder().
		WithName("Stanford University").
		WithLocation("USA", "CA", "Stanford").
		WithRanking(3).
		WithAcceptanceRate(3.7).
		WithApplicationSystem("Common App").
		WithMajors("Computer Science", "Economics").
		Build(t, testDB.DB)
	testutil.NewUniversityBuilder().
		WithName("University of Toronto").
		WithLocation("Canada", "", "Toronto").
		WithRanking(21).
		WithAcceptanceRate(43).
		WithApplicationSystem("OUAC").
		WithMajors("Economics", "History").
		Build(t, testDB.DB)
	testutil.NewUniversityBuilder().
		WithName("Unranked College").
		WithLocation("USA", "OH", "Gambier").
		WithApplicationSystem("Common App").
		WithMajors("History").
		Build(t, testDB.DB)

	minRate, maxRate := 3.8, 50.0
	maxRanking := 5

	tests := []struct {
		name   string
		filter domain.UniversityFilter
		want   []string
	}{
		{
			name:   "no filter orders by ranking then unranked",
			filter: domain.UniversityFilter{},
			want:   []string{"Massachusetts Institute of Technology", "Stanford University", "University of Toronto", "Unranked College"},
		},
		{
			name:   "query matches name case-insensitively",
			filter: domain.UniversityFilter{Query: "stanford"},
			want:   []string{"Stanford University"},
		},
		{
			name:   "query matches city",
			filter: domain.UniversityFilter{Query: "toronto"},
			want:   []string{"University of Toronto"},
		},
		{
			name:   "country filter",
			filter: domain.UniversityFilter{Countries: []string{"Canada"}},
			want:   []string{"University of Toronto"},
		},
		{
			name:   "state filter",
			filter: domain.UniversityFilter{States: []string{"CA", "OH"}},
			want:   []string{"Stanford University", "Unranked College"},
		},
		{
			name:   "any of the majors",
			filter: domain.UniversityFilter{Majors: []string{"Physics", "History"}},
			want:   []string{"Massachusetts Institute of Technology", "University of Toronto", "Unranked College"},
		},
		{
			name:   "application system",
			filter: domain.UniversityFilter{ApplicationSystems: []string{"Common App"}},
			want:   []string{"Stanford University", "Unranked College"},
		},
		{
			name:   "acceptance range",
			filter: domain.UniversityFilter{MinAcceptance: &minRate, MaxAcceptance: &maxRate},
			want:   []string{"Massachusetts Institute of Technology", "University of Toronto"},
		},
		{
			name:   "ranking ceiling excludes unranked",
			filter: domain.UniversityFilter{MaxRanking: &maxRanking},
			want:   []string{"Massachusetts Institute of Technology", "Stanford University"},
		},
		{
			name:   "limit",
			filter: domain.UniversityFilter{Limit: 1},
			want:   []string{"Massachusetts Institute of Technology"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, universityNames(got))
		})
	}
}

func TestUniversityRepository_FilterOptions(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUniversityRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty catalogue returns empty lists", func(t *testing.T) {
		opts, err := repo.FilterOptions(ctx)
		require.NoError(t, err)
		assert.Empty(t, opts.Countries)
		assert.NotNil(t, opts.Majors)
	})

	testutil.NewUniversityBuilder().
		WithLocation("USA", "MA", "Boston").
		WithApplicationSystem("Common App").
		WithMajors("Physics", "Biology").
		Build(t, testDB.DB)
	testutil.NewUniversityBuilder().
		WithLocation("Canada", "", "Montreal").
		WithApplicationSystem("Direct").
		WithMajors("Biology", "Art").
		Build(t, testDB.DB)

	t.Run("distinct sorted values", func(t *testing.T) {
		opts, err := repo.FilterOptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Canada", "USA"}, opts.Countries)
		assert.Equal(t, []string{"MA"}, opts.States)
		assert.Equal(t, []string{"Art", "Biology", "Physics"}, opts.Majors)
		assert.Equal(t, []string{"Common App", "Direct"}, opts.ApplicationSystems)
	})
}

func TestUniversityRepository_UpsertMany(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUniversityRepository(testDB.DB)
	ctx := context.Background()

	rate := 10.0
	first := &domain.University{ID: uuid.New(), Name: "Upsert University", Country: "USA", City: "Austin", AcceptanceRate: &rate}
	first.SetMajors([]string{"Math"})
	require.NoError(t, repo.UpsertMany(ctx, []*domain.University{first}))

	updatedRate := 12.5
	second := &domain.University{ID: uuid.New(), Name: "Upsert University", Country: "USA", City: "Austin", AcceptanceRate: &updatedRate}
	second.SetMajors([]string{"Math", "Chemistry"})
	require.NoError(t, repo.UpsertMany(ctx, []*domain.University{second}))

	got, err := repo.Search(ctx, domain.UniversityFilter{Query: "Upsert"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].AcceptanceRate)
	assert.Equal(t, 12.5, *got[0].AcceptanceRate)
	assert.Equal(t, []string{"Math", "Chemistry"}, got[0].Majors())
}

func TestUniversityRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUniversityRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUniversityBuilder().WithName("100% Online Academy").WithRanking(1).Build(t, testDB.DB)
	testutil.NewUniversityBuilder().WithName("Snake_Case Institute").WithRanking(2).Build(t, testDB.DB)
	testutil.NewUniversityBuilder().WithName("Snake Case College").WithRanking(3).Build(t, testDB.DB)
	testutil.NewUniversityBuilder().WithName(`Back\slash University`).WithRanking(4).Build(t, testDB.DB)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "percent sign", query: "%", want: []string{"100% Online Academy"}},
		{name: "underscore", query: "_", want: []string{"Snake_Case Institute"}},
		{name: "underscore is not a single-character wildcard", query: "snake_case", want: []string{"Snake_Case Institute"}},
		{name: "backslash", query: `k\s`, want: []string{`Back\slash University`}},
		{name: "plain text still matches", query: "snake", want: []string{"Snake_Case Institute", "Snake Case College"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, domain.UniversityFilter{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, universityNames(got))
		})
	}
}
