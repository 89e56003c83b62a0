package ranker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mstrand/wavesearch/internal/search"
)

var freshNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestFreshnessBuckets(t *testing.T) {
	cases := []struct {
		ageDays int
		want    float64
	}{
		{1, 95},
		{7, 95},
		{8, 85},
		{30, 85},
		{31, 75},
		{90, 75},
		{91, 65},
		{365, 65},
		{366, 55},
		{730, 55},
		{731, 45},
		{3000, 45},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d days old", tc.ageDays), func(t *testing.T) {
			published := freshNow.AddDate(0, 0, -tc.ageDays)
			r := search.Result{URL: "u", Published: &published}
			assert.Equal(t, tc.want, freshnessScore(r, freshNow))
		})
	}
}

func TestFreshnessNeutral(t *testing.T) {
	t.Run("no date at all scores exactly 50", func(t *testing.T) {
		r := search.Result{URL: "u", Snippet: "nothing datelike in here"}
		assert.Equal(t, 50.0, freshnessScore(r, freshNow))
	})

	t.Run("future date scores 50", func(t *testing.T) {
		future := freshNow.AddDate(1, 0, 0)
		r := search.Result{URL: "u", Published: &future}
		assert.Equal(t, 50.0, freshnessScore(r, freshNow))
	})
}

func TestScanDate(t *testing.T) {
	t.Run("iso date in snippet", func(t *testing.T) {
		got := scanDate("published on 2026-03-08 by staff")
		if assert.NotNil(t, got) {
			assert.Equal(t, time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC), *got)
		}
	})

	t.Run("us slash date", func(t *testing.T) {
		got := scanDate("updated 3/8/2026 with corrections")
		if assert.NotNil(t, got) {
			assert.Equal(t, time.March, got.Month())
			assert.Equal(t, 8, got.Day())
		}
	})

	t.Run("word date", func(t *testing.T) {
		got := scanDate("Posted March 8, 2026 in the archive")
		if assert.NotNil(t, got) {
			assert.Equal(t, time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC), *got)
		}
	})

	t.Run("abbreviated month", func(t *testing.T) {
		got := scanDate("Mar. 8, 2026 release notes")
		assert.NotNil(t, got)
	})

	t.Run("invalid calendar date is rejected", func(t *testing.T) {
		assert.Nil(t, scanDate("published 2026-02-31 allegedly"))
	})

	t.Run("garbage yields nil", func(t *testing.T) {
		assert.Nil(t, scanDate("not a date 12345-99"))
	})
}

func TestResolveDatePrefersExplicitField(t *testing.T) {
	explicit := freshNow.AddDate(0, 0, -3)
	r := search.Result{
		URL:       "u",
		Snippet:   "an older mention from 2020-01-01",
		Published: &explicit,
	}
	got := resolveDate(r)
	if assert.NotNil(t, got) {
		assert.Equal(t, explicit, *got)
	}
}
