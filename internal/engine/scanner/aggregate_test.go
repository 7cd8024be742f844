package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turismolocal/poiscan/internal/model"
)

func aggRecord(id, name string) model.BusinessRecord {
	return model.BusinessRecord{ExternalID: id, Name: name, Lat: 19.4, Lng: -99.1}
}

func TestAggregatorFirstSeenWins(t *testing.T) {
	agg := NewAggregator()

	added := agg.Add([]model.BusinessRecord{
		aggRecord("A", "first"),
		aggRecord("B", "b"),
	})
	assert.Equal(t, 2, added)

	// Overlapping zone returns A again with different data.
	added = agg.Add([]model.BusinessRecord{
		aggRecord("A", "second"),
		aggRecord("C", "c"),
	})
	assert.Equal(t, 1, added)

	records := agg.Records()
	assert.Equal(t, 3, agg.UniqueCount())
	assert.Equal(t, []string{"A", "B", "C"}, []string{records[0].ExternalID, records[1].ExternalID, records[2].ExternalID})
	assert.Equal(t, "first", records[0].Name)
}

func TestAggregatorDropsMissingID(t *testing.T) {
	agg := NewAggregator()
	added := agg.Add([]model.BusinessRecord{
		aggRecord("", "no id"),
		aggRecord("A", "a"),
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, agg.UniqueCount())
}

func TestAggregatorDropsMissingCoordinates(t *testing.T) {
	agg := NewAggregator()
	added := agg.Add([]model.BusinessRecord{
		{ExternalID: "A", Name: "nowhere"},
		aggRecord("B", "b"),
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, "B", agg.Records()[0].ExternalID)
}

func TestAggregatorEmpty(t *testing.T) {
	agg := NewAggregator()
	assert.Zero(t, agg.UniqueCount())
	assert.Empty(t, agg.Records())
}
