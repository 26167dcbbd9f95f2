package recommendation

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	vectorWeight = 0.7
	tagWeight    = 0.3
)

type Result struct {
	Score       int
	MatchedTags []string
}

// Score combines cosine similarity of the vectors with Jaccard overlap of the
// tags into a 0-100 integer. When one side has no vector the tag overlap is
// used alone, and vice versa.
func Score(user, job Feature) Result {
	cos, hasVec := cosine(user.Vector, job.Vector)
	jac, matched, hasTags := jaccard(user.Tags, job.Tags)

	var total float64
	switch {
	case hasVec && hasTags:
		total = vectorWeight*cos + tagWeight*jac
	case hasVec:
		total = cos
	case hasTags:
		total = jac
	default:
		return Result{Score: 0, MatchedTags: matched}
	}

	score := clampInt(int(math.Round(total*100)), 0, 100)
	return Result{Score: score, MatchedTags: matched}
}

// Rank scores every user against every job and keeps at most topN entries per
// user and per job, dropping zero scores.
func Rank(users, jobs []Feature, topN int) (byUser, byJob []Pair) {
	if topN <= 0 {
		topN = 20
	}

	perUser := make(map[uuid.UUID][]Pair, len(users))
	perJob := make(map[uuid.UUID][]Pair, len(jobs))
	for _, u := range users {
		for _, j := range jobs {
			r := Score(u, j)
			if r.Score <= 0 {
				continue
			}
			p := Pair{UserID: u.OwnerID, JobID: j.OwnerID, Score: r.Score, MatchedTags: r.MatchedTags}
			perUser[u.OwnerID] = append(perUser[u.OwnerID], p)
			perJob[j.OwnerID] = append(perJob[j.OwnerID], p)
		}
	}

	for _, u := range users {
		byUser = append(byUser, top(perUser[u.OwnerID], topN)...)
	}
	for _, j := range jobs {
		byJob = append(byJob, top(perJob[j.OwnerID], topN)...)
	}
	return byUser, byJob
}

func top(pairs []Pair, n int) []Pair {
	sort.SliceStable(pairs, func(i, k int) bool { return pairs[i].Score > pairs[k].Score })
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

func cosine(a, b []float64) (float64, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0, false
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, true
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, true
}

func jaccard(a, b []string) (float64, []string, bool) {
	setA := normalizeTags(a)
	setB := normalizeTags(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0, nil, false
	}

	matched := make([]string, 0)
	union := len(setB)
	for t := range setA {
		if _, ok := setB[t]; ok {
			matched = append(matched, t)
			continue
		}
		union++
	}
	sort.Strings(matched)
	return float64(len(matched)) / float64(union), matched, true
}

func normalizeTags(tags []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" {
			continue
		}
		out[t] = struct{}{}
	}
	return out
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
