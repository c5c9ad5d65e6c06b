package domain

// Track is read-only metadata fetched from the external music service.
// It is never persisted beyond the denormalized copy inside a Message.
type Track struct {
	ID      string
	Name    string
	Artists []Artist
	Album   Album
}

type Artist struct {
	Name string
}

type Album struct {
	// Images are ordered largest-first by the upstream service.
	Images []AlbumImage
}

type AlbumImage struct {
	URL string
}

// PrimaryArtist returns the first artist name, the one denormalized
// into a Message at send time.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// CoverURL returns the largest album image, or empty if none.
func (t Track) CoverURL() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}
