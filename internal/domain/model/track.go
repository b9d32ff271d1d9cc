// Package model contains domain models passed between layers.
package model

// Feature names one scalar of a track's audio-feature vector.
type Feature int

// Audio features carried by every well-formed vector.
const (
	Energy Feature = iota
	Danceability
	Valence
	Acousticness
	Instrumentalness
	Tempo
)

// String returns the catalog name of the feature.
func (f Feature) String() string {
	switch f {
	case Energy:
		return "energy"
	case Danceability:
		return "danceability"
	case Valence:
		return "valence"
	case Acousticness:
		return "acousticness"
	case Instrumentalness:
		return "instrumentalness"
	case Tempo:
		return "tempo"
	default:
		return "unknown"
	}
}

// RawFeatures is a catalog feature record as fetched. A nil field means the
// catalog returned no value for it.
type RawFeatures struct {
	Energy           *float64 `json:"energy,omitempty"`
	Danceability     *float64 `json:"danceability,omitempty"`
	Valence          *float64 `json:"valence,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty"`
	Tempo            *float64 `json:"tempo,omitempty"`
}

// FeatureVector is a well-formed per-track feature vector. Every field is in
// [0,1] except Tempo, which is in BPM.
type FeatureVector struct {
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
}

// Value returns the scalar for f.
func (v FeatureVector) Value(f Feature) float64 {
	switch f {
	case Energy:
		return v.Energy
	case Danceability:
		return v.Danceability
	case Valence:
		return v.Valence
	case Acousticness:
		return v.Acousticness
	case Instrumentalness:
		return v.Instrumentalness
	case Tempo:
		return v.Tempo
	default:
		return 0
	}
}

// TrackRef is the display identity of a track. It never takes part in scoring.
type TrackRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PrimaryArtist string `json:"primary_artist"`
	AlbumArtURL   string `json:"album_art_url,omitempty"`
}

// Track is a playlist entry as handed over by the catalog collaborator.
type Track struct {
	ID            string       `json:"id" validate:"required"`
	Name          string       `json:"name"`
	PrimaryArtist string       `json:"primary_artist"`
	ArtistIDs     []string     `json:"artist_ids,omitempty"`
	Artists       []string     `json:"artists,omitempty"`
	AlbumArtURL   string       `json:"album_art_url,omitempty"`
	Popularity    int          `json:"popularity,omitempty"`
	DurationMs    int          `json:"duration_ms,omitempty"`
	Features      *RawFeatures `json:"features,omitempty"`
}

// Ref returns the display identity of t.
func (t Track) Ref() TrackRef {
	return TrackRef{
		ID:            t.ID,
		Name:          t.Name,
		PrimaryArtist: t.PrimaryArtist,
		AlbumArtURL:   t.AlbumArtURL,
	}
}

// AudioDNA is the display-scaled mean feature vector. Every field is in [0,100].
type AudioDNA struct {
	Energy           int `json:"energy"`
	Danceability     int `json:"danceability"`
	Valence          int `json:"valence"`
	Acousticness     int `json:"acousticness"`
	Instrumentalness int `json:"instrumentalness"`
	Tempo            int `json:"tempo"`
}

// GenreShare is one bucket of a genre distribution.
type GenreShare struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}
