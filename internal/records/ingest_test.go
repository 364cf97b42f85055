package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-console/pkg/models"
)

func TestIngestDropsUnparseableID(t *testing.T) {
	rows := [][]string{
		{"1", "ABC123", "2024-01-15", "10:00:00", "Parked", "GateA"},
		{"x", "DEF456", "2024-01-15", "11:00:00", "Exited", "GateB"},
	}

	got := Ingest(rows, IngestOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, models.Record{ID: 1, Plate: "ABC123", Date: "2024-01-15", Time: "10:00:00", Status: "Parked", Location: "GateA"}, got[0])
}

func TestIngestHeaderHandling(t *testing.T) {
	rows := [][]string{
		{"ID", "NUMBERPLATE", "DATE", "TIME", "STATUS", "LOCATION"},
		{"7", "KA01", "2024-02-01", "09:00:00", "Parked", "Section A"},
	}

	assert.Len(t, Ingest(rows, IngestOptions{HasHeader: true}), 1)
	// The header's id does not parse, so it drops out either way.
	assert.Len(t, Ingest(rows, IngestOptions{}), 1)
	assert.Empty(t, Ingest(rows[:1], IngestOptions{HasHeader: true}))
	assert.Empty(t, Ingest(nil, IngestOptions{HasHeader: true}))
}

func TestIngestPartialRows(t *testing.T) {
	rows := [][]string{
		{"3", "XYZ"},        // short row: missing cells become empty
		{"4", ""},           // missing plate: dropped
		{" 5 ", "P", "bad"}, // id is trimmed, date passes through unvalidated
		{},
	}

	got := Ingest(rows, IngestOptions{})
	require.Len(t, got, 2)
	assert.Equal(t, models.Record{ID: 3, Plate: "XYZ"}, got[0])
	assert.Equal(t, 5, got[1].ID)
	assert.Equal(t, "bad", got[1].Date)
}

func TestIngestKeepsSourceOrder(t *testing.T) {
	rows := [][]string{{"9", "A"}, {"2", "B"}, {"5", "C"}}
	got := Ingest(rows, IngestOptions{})
	require.Len(t, got, 3)
	assert.Equal(t, []int{9, 2, 5}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestLatest(t *testing.T) {
	recs := make([]models.Record, 25)
	for i := range recs {
		recs[i] = models.Record{ID: i}
	}

	got := Latest(recs, DefaultPreviewSize)
	require.Len(t, got, 20)
	assert.Equal(t, 5, got[0].ID)
	assert.Equal(t, 24, got[19].ID)

	assert.Len(t, Latest(recs[:3], 20), 3)
	assert.Len(t, Latest(recs, 0), 25)
}

func TestIngestRequiresWholeIntegerID(t *testing.T) {
	rows := [][]string{
		{"12abc", "AAA", "2024-01-15", "10:00:00", "Parked", "GateA"},
		{" 7.0", "BBB", "2024-01-15", "10:05:00", "Parked", "GateA"},
		{"8", "CCC", "2024-01-15", "10:10:00", "Exited", "GateB"},
	}

	got := Ingest(rows, IngestOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, 8, got[0].ID)
}
