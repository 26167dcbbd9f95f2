package recommendation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_IdenticalFeatures(t *testing.T) {
	f := Feature{Vector: []float64{1, 2, 3}, Tags: []string{"Go", "SQL"}}
	r := Score(f, f)
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, []string{"go", "sql"}, r.MatchedTags)
}

func TestScore_OrthogonalVectorsNoTags(t *testing.T) {
	r := Score(Feature{Vector: []float64{1, 0}}, Feature{Vector: []float64{0, 1}})
	assert.Equal(t, 0, r.Score)
}

func TestScore_TagsOnly(t *testing.T) {
	u := Feature{Tags: []string{"go", " redis ", "docker"}}
	j := Feature{Tags: []string{"GO", "postgres"}}
	r := Score(u, j)
	// 1 shared of 4 distinct tags.
	assert.Equal(t, 25, r.Score)
	assert.Equal(t, []string{"go"}, r.MatchedTags)
}

func TestScore_Weighted(t *testing.T) {
	u := Feature{Vector: []float64{1, 0}, Tags: []string{"a", "b"}}
	j := Feature{Vector: []float64{1, 0}, Tags: []string{"c"}}
	// cosine 1.0 * 0.7 + jaccard 0 * 0.3
	assert.Equal(t, 70, Score(u, j).Score)
}

func TestScore_EmptyFeatures(t *testing.T) {
	assert.Equal(t, 0, Score(Feature{}, Feature{Vector: []float64{1}}).Score)
}

func TestRank_TopNAndOrder(t *testing.T) {
	u1 := uuid.New()
	u2 := uuid.New()
	j1 := uuid.New()
	j2 := uuid.New()
	j3 := uuid.New()

	users := []Feature{
		{OwnerID: u1, Vector: []float64{1, 0}},
		{OwnerID: u2, Vector: []float64{0, 1}},
	}
	jobs := []Feature{
		{OwnerID: j1, Vector: []float64{1, 0}},
		{OwnerID: j2, Vector: []float64{1, 1}},
		{OwnerID: j3, Vector: []float64{0, 1}},
	}

	byUser, byJob := Rank(users, jobs, 1)

	require.Len(t, byUser, 2)
	assert.Equal(t, u1, byUser[0].UserID)
	assert.Equal(t, j1, byUser[0].JobID)
	assert.Equal(t, 100, byUser[0].Score)
	assert.Equal(t, u2, byUser[1].UserID)
	assert.Equal(t, j3, byUser[1].JobID)

	// j2 matches both users equally; only one kept.
	require.Len(t, byJob, 3)
	for _, p := range byJob {
		assert.Greater(t, p.Score, 0)
	}
}
