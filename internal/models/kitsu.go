package models

// Kitsu speaks JSON:API: list responses carry the library entries under
// "data", the related anime documents under "included" and pagination
// URLs under "links".

type KitsuEntriesResponse struct {
	Data     []LibraryEntry `json:"data"`
	Included []Anime        `json:"included"`
	Links    KitsuLinks     `json:"links"`
}

type KitsuEntryResponse struct {
	Data     LibraryEntry `json:"data"`
	Included []Anime      `json:"included"`
}

type KitsuLinks struct {
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

type LibraryEntry struct {
	Id            string             `json:"id"`
	Type          string             `json:"type"`
	Attributes    EntryAttributes    `json:"attributes"`
	Relationships EntryRelationships `json:"relationships"`
}

type EntryAttributes struct {
	Status   string `json:"status"`
	Progress int64  `json:"progress"`
}

type EntryRelationships struct {
	Anime RelationshipData `json:"anime"`
}

type RelationshipData struct {
	Data *ResourceIdentifier `json:"data,omitempty"`
}

type ResourceIdentifier struct {
	Id   string `json:"id"`
	Type string `json:"type"`
}

type Anime struct {
	Id         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes AnimeAttributes `json:"attributes"`
}

type AnimeAttributes struct {
	Slug           string `json:"slug"`
	CanonicalTitle string `json:"canonicalTitle"`
	Subtype        string `json:"subtype"`
	Status         string `json:"status"`
	EpisodeCount   int64  `json:"episodeCount"`
	StartDate      string `json:"startDate"`
}

// EntryPage is a decoded page of a user's anime list: the entries in
// order, their anime documents keyed by id, and the neighbouring page
// offsets when Kitsu reports them.
type EntryPage struct {
	Entries []LibraryEntry
	Anime   map[string]Anime
	Prev    *int64
	Next    *int64
}

// EntryDetail pairs one library entry with its anime document.
type EntryDetail struct {
	Entry LibraryEntry
	Anime *Anime
}
