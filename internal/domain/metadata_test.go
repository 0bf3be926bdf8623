package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_Matches_ScalarEquality(t *testing.T) {
	meta := Metadata{"location": String("Berlin")}

	assert.True(t, meta.Matches(Filter{"location": String("Berlin")}))
	assert.False(t, meta.Matches(Filter{"location": String("Munich")}))
}

func TestMetadata_Matches_MissingKeyNeverMatches(t *testing.T) {
	meta := Metadata{"location": String("Berlin")}

	assert.False(t, meta.Matches(Filter{"industry": String("tech")}))
}

func TestMetadata_Matches_FilterStringAgainstListField(t *testing.T) {
	meta := Metadata{"tags": StringList("go", "backend", "remote")}

	assert.True(t, meta.Matches(Filter{"tags": String("backend")}))
	assert.False(t, meta.Matches(Filter{"tags": String("frontend")}))
}

func TestMetadata_Matches_FilterListAgainstStringField(t *testing.T) {
	meta := Metadata{"location": String("Berlin")}

	assert.True(t, meta.Matches(Filter{"location": StringList("Berlin", "Munich")}))
	assert.False(t, meta.Matches(Filter{"location": StringList("Hamburg", "Munich")}))
}

func TestMetadata_Matches_FilterListAgainstListField(t *testing.T) {
	meta := Metadata{"tags": StringList("go", "backend", "remote")}

	assert.True(t, meta.Matches(Filter{"tags": StringList("go", "remote")}))
	assert.False(t, meta.Matches(Filter{"tags": StringList("go", "frontend")}))
}

func TestMetadata_Matches_MultiplePredicatesAreANDed(t *testing.T) {
	meta := Metadata{
		"location": String("Berlin"),
		"tags":     StringList("go", "backend"),
	}

	assert.True(t, meta.Matches(Filter{
		"location": String("Berlin"),
		"tags":     String("go"),
	}))
	assert.False(t, meta.Matches(Filter{
		"location": String("Berlin"),
		"tags":     String("rust"),
	}))
}

func TestMetadata_Matches_EmptyFilterMatchesEverything(t *testing.T) {
	assert.True(t, Metadata{}.Matches(Filter{}))
	assert.True(t, Metadata(nil).Matches(nil))
}

func TestMetadata_Number_FallbackOnWrongKind(t *testing.T) {
	meta := Metadata{
		"score": Number(0.8),
		"name":  String("x"),
	}

	assert.Equal(t, 0.8, meta.Number("score", 0.5))
	assert.Equal(t, 0.5, meta.Number("name", 0.5))
	assert.Equal(t, 0.5, meta.Number("missing", 0.5))
}

func TestValue_JSONRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	meta := Metadata{
		"title":        String("Backend Engineer"),
		"score":        Number(0.75),
		"tags":         StringList("go", "grpc"),
		"published_at": Time(ts),
	}

	encoded, err := json.Marshal(meta)
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	title, ok := decoded["title"].AsString()
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", title)

	score, ok := decoded["score"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 0.75, score)

	tags, ok := decoded["tags"].AsStringList()
	require.True(t, ok)
	assert.Equal(t, []string{"go", "grpc"}, tags)

	published, ok := decoded["published_at"].AsTime()
	require.True(t, ok)
	assert.True(t, ts.Equal(published))
}

func TestMetadata_CloneIsIndependent(t *testing.T) {
	meta := Metadata{"location": String("Berlin")}
	clone := meta.Clone()
	clone["location"] = String("Munich")

	loc, _ := meta["location"].AsString()
	assert.Equal(t, "Berlin", loc)
}
