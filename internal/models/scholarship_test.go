package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScholarshipTransitions(t *testing.T) {
	allowed := map[ScholarshipStatus]map[ScholarshipStatus]bool{
		ScholarshipStatusDraft:     {ScholarshipStatusPublished: true},
		ScholarshipStatusPublished: {ScholarshipStatusClosed: true},
		ScholarshipStatusClosed:    {ScholarshipStatusArchived: true},
		ScholarshipStatusArchived:  {},
	}
	statuses := []ScholarshipStatus{
		ScholarshipStatusDraft, ScholarshipStatusPublished,
		ScholarshipStatusClosed, ScholarshipStatusArchived,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestScholarshipStatusValid(t *testing.T) {
	assert.True(t, ScholarshipStatusDraft.Valid())
	assert.True(t, ScholarshipStatusArchived.Valid())
	assert.False(t, ScholarshipStatus("open").Valid())
	assert.False(t, ScholarshipStatus("").Valid())
}

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Beca de Excelencia Académica Test", "beca-de-excelencia-academica-test"},
		{"  Beca   Niñez  y Juventud ", "beca-ninez-y-juventud"},
		{"Beca 2025 (Única)", "beca-2025-unica"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateSlug(tc.title), tc.title)
	}
}

func TestGenerateSlugIdempotent(t *testing.T) {
	slug := GenerateSlug("Beca de Excelencia Académica Test")
	require.NotEmpty(t, slug)
	assert.Equal(t, slug, GenerateSlug(slug))
}

func TestScholarshipCanApply(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	base := Scholarship{
		Status:  ScholarshipStatusPublished,
		OpenAt:  now.Add(-24 * time.Hour),
		CloseAt: now.Add(30 * 24 * time.Hour),
	}

	open := base
	assert.True(t, open.CanApply(now))

	draft := base
	draft.Status = ScholarshipStatusDraft
	assert.False(t, draft.CanApply(now))

	notYet := base
	notYet.OpenAt = now.Add(time.Hour)
	assert.False(t, notYet.CanApply(now))

	closed := base
	closed.CloseAt = now.Add(-time.Minute)
	assert.False(t, closed.CanApply(now))
}

func TestScholarshipDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	s := Scholarship{Status: ScholarshipStatusPublished, CloseAt: now.Add(10 * 24 * time.Hour)}
	days := s.DaysRemaining(now)
	require.NotNil(t, days)
	assert.Equal(t, 10, *days)

	partial := Scholarship{Status: ScholarshipStatusPublished, CloseAt: now.Add(36 * time.Hour)}
	days = partial.DaysRemaining(now)
	require.NotNil(t, days)
	assert.Equal(t, 2, *days)

	past := Scholarship{Status: ScholarshipStatusPublished, CloseAt: now.Add(-time.Hour)}
	days = past.DaysRemaining(now)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)

	draft := Scholarship{Status: ScholarshipStatusDraft, CloseAt: now.Add(time.Hour)}
	assert.Nil(t, draft.DaysRemaining(now))
}

func TestRequiredDocListRoundTrip(t *testing.T) {
	docs := RequiredDocList{{Type: "transcript", Label: "Certificado de notas", Required: true}}
	raw, err := docs.Value()
	require.NoError(t, err)

	var decoded RequiredDocList
	require.NoError(t, decoded.Scan(raw))
	require.Len(t, decoded, 1)
	assert.Equal(t, "transcript", decoded[0].Type)
	assert.True(t, decoded[0].Required)
}
