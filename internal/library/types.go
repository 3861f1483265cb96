package library

// TrackFile is a subtitle file belonging to a media item.
type TrackFile struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Label    string `json:"label"`
	Format   string `json:"format"`
}

// Media is a video (or a standalone transcript) with its subtitle files.
// ID is the slash separated path relative to the library root, without
// extension.
type Media struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Path   string      `json:"path,omitempty"`
	Tracks []TrackFile `json:"tracks"`
}
