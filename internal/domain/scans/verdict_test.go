package scans

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdictFlat(t *testing.T) {
	data := []byte(`{
		"classification": "CONFIDENTIAL",
		"sensitivity_rating": 9,
		"should_be_deleted": true,
		"deletion_date": "2026-09-02T10:00:00Z",
		"reasoning": "API keys visible in terminal"
	}`)

	v, err := ParseVerdict(data)
	require.NoError(t, err)
	assert.Equal(t, "CONFIDENTIAL", v.Classification)
	assert.Equal(t, 9, v.SensitivityRating)
	assert.True(t, v.ShouldBeDeleted)
	require.NotNil(t, v.DeletionDate)
	assert.Equal(t, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC), *v.DeletionDate)
	assert.Equal(t, "API keys visible in terminal", v.Reasoning)
}

func TestParseVerdictNested(t *testing.T) {
	// Engine output wraps the verdict under pipeline bookkeeping keys.
	data := []byte(`{
		"pipeline_run_id": "abc",
		"main_stuff": {
			"content": {
				"classification": "PUBLIC",
				"sensitivity_rating": 1,
				"should_be_deleted": false,
				"reasoning": "marketing material"
			}
		}
	}`)

	v, err := ParseVerdict(data)
	require.NoError(t, err)
	assert.Equal(t, "PUBLIC", v.Classification)
	assert.Equal(t, 1, v.SensitivityRating)
	assert.False(t, v.ShouldBeDeleted)
	assert.Nil(t, v.DeletionDate)
}

func TestParseVerdictStringyFields(t *testing.T) {
	data := []byte(`{
		"classification": "INTERNAL",
		"sensitivity_rating": "6",
		"should_be_deleted": "false"
	}`)

	v, err := ParseVerdict(data)
	require.NoError(t, err)
	assert.Equal(t, 6, v.SensitivityRating)
	assert.False(t, v.ShouldBeDeleted)
}

func TestParseVerdictDateOnly(t *testing.T) {
	data := []byte(`{
		"classification": "RESTRICTED",
		"sensitivity_rating": 4,
		"should_be_deleted": true,
		"deletion_date": "2026-09-03"
	}`)

	v, err := ParseVerdict(data)
	require.NoError(t, err)
	require.NotNil(t, v.DeletionDate)
	assert.Equal(t, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC), *v.DeletionDate)
}

func TestParseVerdictMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":            `{{`,
		"no verdict object":   `{"result": "ok"}`,
		"missing rating":      `{"classification": "PUBLIC"}`,
		"rating out of range": `{"classification": "PUBLIC", "sensitivity_rating": 42, "should_be_deleted": false}`,
		"missing flag":        `{"classification": "PUBLIC", "sensitivity_rating": 2}`,
		"bad date":            `{"classification": "PUBLIC", "sensitivity_rating": 2, "should_be_deleted": true, "deletion_date": "tomorrow"}`,
		"flag without date":   `{"classification": "PUBLIC", "sensitivity_rating": 2, "should_be_deleted": true}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseVerdict([]byte(data))
			assert.True(t, errors.Is(err, ErrMalformedVerdict), "got %v", err)
		})
	}
}

func TestDueForDeletion(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	yes := true
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&ScanRecord{}).DueForDeletion(now))
	assert.False(t, (&ScanRecord{ShouldBeDeleted: &yes}).DueForDeletion(now))
	assert.False(t, (&ScanRecord{ShouldBeDeleted: &yes, DeletionDate: &future}).DueForDeletion(now))
	assert.True(t, (&ScanRecord{ShouldBeDeleted: &yes, DeletionDate: &past}).DueForDeletion(now))
	assert.True(t, (&ScanRecord{ShouldBeDeleted: &yes, DeletionDate: &now}).DueForDeletion(now))
}
