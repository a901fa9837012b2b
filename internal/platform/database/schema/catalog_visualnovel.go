package schema

// CatalogVisualNovelTable represents the 'visual_novels' table
type CatalogVisualNovelTable struct {
	Table         string
	ID            string
	Title         string
	AltTitle      string
	Released      string
	ReleasedRaw   string
	Description   string
	ImageURL      string
	ImageSexual   string
	ImageViolence string
	Rating        string
	VoteCount     string
	Tags          string
	Developers    string
	Screenshots   string
	UpdatedAt     string
}

// VisualNovel is the schema definition for visual_novels
var VisualNovel = CatalogVisualNovelTable{
	Table:         "visual_novels",
	ID:            "id",
	Title:         "title",
	AltTitle:      "alttitle",
	Released:      "released",
	ReleasedRaw:   "released_raw",
	Description:   "description",
	ImageURL:      "image_url",
	ImageSexual:   "image_sexual",
	ImageViolence: "image_violence",
	Rating:        "rating",
	VoteCount:     "votecount",
	Tags:          "tags",
	Developers:    "developers",
	Screenshots:   "screenshots",
	UpdatedAt:     "updated_at",
}

// Columns lists every column in insert order. UpdatedAt is last and is
// always set by the database.
func (t CatalogVisualNovelTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.AltTitle, t.Released, t.ReleasedRaw, t.Description,
		t.ImageURL, t.ImageSexual, t.ImageViolence,
		t.Rating, t.VoteCount,
		t.Tags, t.Developers, t.Screenshots,
		t.UpdatedAt,
	}
}
