package format_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"charity-events/pkg/format"
)

func TestComputeProgress(t *testing.T) {
	d := decimal.NewFromInt

	t.Run("No goal", func(t *testing.T) {
		assert.Equal(t, 0, format.ComputeProgress(d(500), d(0)))
		assert.Equal(t, 0, format.ComputeProgress(d(0), d(0)))
	})

	t.Run("Rounded percentage", func(t *testing.T) {
		assert.Equal(t, 65, format.ComputeProgress(d(6500), d(10000)))
		assert.Equal(t, 33, format.ComputeProgress(d(1), d(3)))
		assert.Equal(t, 67, format.ComputeProgress(d(2), d(3)))
	})

	t.Run("Clamped to 100", func(t *testing.T) {
		assert.Equal(t, 100, format.ComputeProgress(d(15000), d(10000)))
	})

	t.Run("Monotonic in current", func(t *testing.T) {
		goal := d(777)
		prev := 0
		for current := int64(0); current <= 1000; current += 7 {
			p := format.ComputeProgress(d(current), goal)
			assert.GreaterOrEqual(t, p, prev)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
			prev = p
		}
	})
}

func TestCurrencyAndPrice(t *testing.T) {
	assert.Equal(t, "$25.00", format.Currency(decimal.NewFromInt(25)))
	assert.Equal(t, "$9.99", format.Currency(decimal.RequireFromString("9.99")))
	assert.Equal(t, "Free", format.Price(decimal.Zero))
	assert.Equal(t, "$10.50", format.Price(decimal.RequireFromString("10.5")))
}

func TestDateAndTime(t *testing.T) {
	ts := time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Sat, Mar 15, 2025", format.Date(ts))
	assert.Equal(t, "9:30 AM", format.Time(ts))
	assert.Empty(t, format.Date(time.Time{}))
}

func TestHighlight(t *testing.T) {
	t.Run("Wraps case-insensitive matches", func(t *testing.T) {
		got := format.Highlight("City Park & park lane", "PARK")
		assert.Equal(t, "City <mark>Park</mark> &amp; <mark>park</mark> lane", got)
	})

	t.Run("Escapes regex metacharacters", func(t *testing.T) {
		got := format.Highlight("Hall (A) and Hall A", "(a)")
		assert.Equal(t, "Hall <mark>(A)</mark> and Hall A", got)
	})

	t.Run("Escapes markup in the text", func(t *testing.T) {
		got := format.Highlight("<b>Gala</b>", "gala")
		assert.Equal(t, "&lt;b&gt;<mark>Gala</mark>&lt;/b&gt;", got)
	})

	t.Run("Empty term only escapes", func(t *testing.T) {
		assert.Equal(t, "a &lt; b", format.Highlight("a < b", "  "))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", format.Truncate("short", 10))
	assert.Equal(t, "abcd...", format.Truncate("abcdefghij", 7))
}
