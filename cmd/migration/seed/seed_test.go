package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuits(t *testing.T) {
	circuits := Circuits()

	require.Len(t, circuits, 4)
	for _, circuit := range circuits {
		assert.NotEmpty(t, circuit.Name)
		assert.True(t, circuit.Length.Valid, circuit.Name)
	}
	assert.Equal(t, "3.337", circuits[0].Length.Decimal.StringFixed(3))
}

func TestRaces(t *testing.T) {
	seeds := races(2024)

	require.Len(t, seeds, 4)

	rounds := map[int]bool{}
	for _, seed := range seeds {
		assert.Less(t, seed.circuit, len(Circuits()))
		assert.Equal(t, 2024, seed.race.Season)
		assert.Equal(t, 2024, time.Time(seed.race.Date).Year())
		assert.NotEmpty(t, seed.race.Tags)
		assert.False(t, rounds[seed.race.Round], "duplicate round %d", seed.race.Round)
		rounds[seed.race.Round] = true
	}

	monaco := seeds[0]
	assert.Equal(t, "Monaco Grand Prix", monaco.race.Name)
	require.Len(t, monaco.results, 3)
	assert.Equal(t, "Max Verstappen", monaco.results[0].DriverName)
	assert.Equal(t, 25, monaco.results[0].Points)
}
