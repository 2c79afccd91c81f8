package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	npdmodels "sinpd-backend/shared/database/models/npd"
)

func TestDistributeToLinesRemainderFollowsRowOrder(t *testing.T) {
	// With tied weights the truncation remainder lands on the first
	// line. Reading the rows in a different order moves it to a
	// different line, which is why issuance and reversal both preload
	// through lineOrder.
	first := npdmodels.Line{Description: "ATK", Amount: 50}
	second := npdmodels.Line{Description: "Jasa", Amount: 50}

	shares, err := distributeToLines([]npdmodels.Line{first, second}, 99)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 49}, shares)

	swapped, err := distributeToLines([]npdmodels.Line{second, first}, 99)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 49}, swapped)

	// Same positional shares, but "ATK" got 50 in the first order and
	// 49 in the second: an unordered reversal read would subtract the
	// wrong amounts.
	assert.NotEqual(t, shares[0], swapped[1])
}

func TestDistributeToLinesStableForSameOrder(t *testing.T) {
	lines := []npdmodels.Line{
		{Amount: 3_000_000},
		{Amount: 2_000_000},
		{Amount: 2_000_000},
	}

	issued, err := distributeToLines(lines, 5_000_001)
	require.NoError(t, err)
	reversed, err := distributeToLines(lines, 5_000_001)
	require.NoError(t, err)

	assert.Equal(t, issued, reversed)

	var total int64
	for _, s := range issued {
		total += s
	}
	assert.Equal(t, int64(5_000_001), total)
}

func TestLineOrderPinsQueryOrder(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var lines []npdmodels.Line
	stmt := lineOrder(db.Session(&gorm.Session{DryRun: true}).
		Model(&npdmodels.Line{})).Find(&lines).Statement

	assert.Contains(t, stmt.SQL.String(), "ORDER BY created_at asc, id asc")
}
