// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vndb

// RawRecord is one visual novel entry as returned by the VNDB "vn" endpoint.
//
// Optional values are pointers: VNDB sends null (or omits the key) for
// unknown data, and that absence must survive until the store.
type RawRecord struct {
	ID          string          `json:"id"          validate:"required"`
	Title       string          `json:"title"       validate:"required"`
	AltTitle    *string         `json:"alttitle"`
	Titles      []TitleEntry    `json:"titles"      validate:"omitempty,dive"`
	Released    *string         `json:"released"`
	Description *string         `json:"description"`
	Image       *Image          `json:"image"`
	Rating      *float64        `json:"rating"`
	VoteCount   *int            `json:"votecount"`
	Tags        []TagRef        `json:"tags"        validate:"omitempty,dive"`
	Developers  []DeveloperRef  `json:"developers"`
	Screenshots []ScreenshotRef `json:"screenshots"`
}

// TitleEntry is a title in one language.
type TitleEntry struct {
	Lang  string `json:"lang"`
	Title string `json:"title"`
}

// Image describes the cover image and its content flags.
type Image struct {
	URL      *string  `json:"url"`
	Sexual   *float64 `json:"sexual"`
	Violence *float64 `json:"violence"`
}

// TagRef is a tag applied to a visual novel with its relevance rating.
type TagRef struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name"   validate:"required"`
	Rating *float64 `json:"rating"`
}

// DeveloperRef names a producer credited as developer.
type DeveloperRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ScreenshotRef points at one screenshot image.
type ScreenshotRef struct {
	URL string `json:"url"`
}
