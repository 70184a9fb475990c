package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadAbsentFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	incidents, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hits.json")
	s := NewFileStore(path)

	incidents := []domain.Incident{
		{
			Location: "Tel Aviv",
			Lat:      32.08,
			Lon:      34.78,
			Time:     time.Date(2024, 5, 23, 14, 35, 0, 0, time.UTC),
			Kind:     "missile",
		},
		{
			Location: "Haifa",
			Lat:      32.79,
			Lon:      34.99,
			Time:     time.Date(2024, 5, 23, 15, 0, 0, 0, time.UTC),
			Kind:     "alert",
		},
	}

	require.NoError(t, s.Save(incidents))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, incidents[0].Location, loaded[0].Location)
	assert.True(t, incidents[0].Time.Equal(loaded[0].Time))
	assert.Equal(t, incidents[1], loaded[1])
}

func TestFileStore_SaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "hits.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(nil))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileStore_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse incident store")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save([]domain.Incident{{Location: "A"}, {Location: "B"}}))
	require.NoError(t, s.Save([]domain.Incident{{Location: "C"}}))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].Location)
}

func TestLoadShelters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelters.json")
	payload := `[
  {"name": "Dizengoff Center", "lat": 32.075, "lon": 34.775, "capacity": 400},
  {"lat": 31.5, "lon": 34.9}
]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	shelters, err := LoadShelters(path)
	require.NoError(t, err)
	require.Len(t, shelters, 2)
	assert.Equal(t, "Dizengoff Center", shelters[0].Name)
	assert.Equal(t, 32.075, shelters[0].Lat)
	assert.Equal(t, domain.Coordinate{Lat: 31.5, Lon: 34.9}, shelters[1].Coordinate())
}

func TestLoadShelters_MissingFileIsError(t *testing.T) {
	_, err := LoadShelters(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
