package delivery

import "github.com/agencyos/backend/internal/domain/shared/listing"

// ContentStage is the approval stage of a content piece
type ContentStage string

const (
	ContentStageIdea      ContentStage = "idea"
	ContentStageDraft     ContentStage = "draft"
	ContentStageInReview  ContentStage = "in_review"
	ContentStageApproved  ContentStage = "approved"
	ContentStagePublished ContentStage = "published"
)

var ContentLifecycle = listing.Lifecycle{
	Order: []string{
		string(ContentStageIdea), string(ContentStageDraft), string(ContentStageInReview),
		string(ContentStageApproved), string(ContentStagePublished),
	},
}

// ContentItem is a post, article or video moving through approval
type ContentItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Brand       string       `json:"brand,omitempty"`
	Channel     string       `json:"channel"`
	Author      string       `json:"author,omitempty"`
	Stage       ContentStage `json:"stage"`
	PublishDate string       `json:"publish_date,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

func (c ContentItem) RecordID() string { return c.ID }

func (c ContentItem) WithID(id string) ContentItem {
	c.ID = id
	return c
}

func (c ContentItem) RecordStatus() string { return string(c.Stage) }

func (c ContentItem) WithStatus(status string) ContentItem {
	c.Stage = ContentStage(status)
	return c
}

func ContentSchema() *listing.Schema[ContentItem] {
	return &listing.Schema[ContentItem]{
		Name:         "content",
		Kind:         "content item",
		IDPrefix:     "cnt",
		Lifecycle:    ContentLifecycle,
		SearchFields: func(c ContentItem) []string { return append([]string{c.Title, c.Author}, c.Tags...) },
		Brands:       func(c ContentItem) []string { return []string{c.Brand} },
		Facets: map[string]func(ContentItem) []string{
			"channel": func(c ContentItem) []string { return []string{c.Channel} },
			"author":  func(c ContentItem) []string { return []string{c.Author} },
			"tag":     func(c ContentItem) []string { return c.Tags },
		},
		Sorts: map[string]listing.Comparator[ContentItem]{
			"title":        listing.Strings(func(c ContentItem) string { return c.Title }),
			"publish_date": listing.Strings(func(c ContentItem) string { return c.PublishDate }),
		},
		Required: func(c ContentItem) []string {
			return listing.RequireText("title", c.Title, "channel", c.Channel)
		},
		Columns: []listing.Column[ContentItem]{
			{Name: "id", Value: func(c ContentItem) string { return c.ID }},
			{Name: "title", Value: func(c ContentItem) string { return c.Title }},
			{Name: "brand", Value: func(c ContentItem) string { return c.Brand }},
			{Name: "channel", Value: func(c ContentItem) string { return c.Channel }},
			{Name: "stage", Value: func(c ContentItem) string { return string(c.Stage) }},
			{Name: "publish_date", Value: func(c ContentItem) string { return c.PublishDate }},
		},
	}
}
