// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowsToRecordsCoercesDigitOnlyCells(t *testing.T) {
	rows := [][]string{
		{"NAME", "EMP", "NAICS2017"},
		{"United States", "1234", "54"},
	}
	records := rowsToRecords(rows)
	assert.Len(t, records, 1)
	assert.Equal(t, "United States", records[0]["NAME"])
	assert.Equal(t, int64(1234), records[0]["EMP"])
	assert.Equal(t, int64(54), records[0]["NAICS2017"])
}

func TestCoerceLeavesNonDigitCellsAsStrings(t *testing.T) {
	assert.Equal(t, "06000US", coerce("06000US"))
	assert.Equal(t, "", coerce(""))
}
