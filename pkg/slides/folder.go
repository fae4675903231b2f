package slides

// RootFolderID is the sentinel identifying the remote root container.
const RootFolderID = "root"

// Folder is a grouping node in the remote hierarchy. Folders may hold
// presentations and nested folders; the tree is resolved lazily, one
// listing at a time, and only for the duration of a single export run.
type Folder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// IsRoot reports whether the folder is the root sentinel.
func (f Folder) IsRoot() bool { return f.ID == RootFolderID || f.ID == "" }

// PresentationRef is a presentation discovered in a folder listing.
// It carries only identity and display name; the slide list comes from
// [RemoteSource.GetPresentation].
type PresentationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Listing is the resolved content of one folder.
type Listing struct {
	Presentations []PresentationRef `json:"presentations"`
	Folders       []Folder          `json:"folders"`
}
