package notion

// Wire shapes for the subset of the Notion API this service touches.
//
// Notion does not enforce a schema server-side: any property can be absent,
// empty, or carry a different type than expected. Every nested pointer here
// is genuinely optional and callers must treat it that way.

// RichText is one segment of a title or rich_text property.
type RichText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
}

// TextContent is the writable payload of a rich text segment.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption is the chosen option of a select or status property.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue holds a date property's range; only Start is used here.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// UniqueID is the auto-incrementing id Notion assigns per database row.
type UniqueID struct {
	Prefix string `json:"prefix,omitempty"`
	Number *int   `json:"number"`
}

// Property is a tagged-union value wrapper. Exactly one of the typed fields
// is populated, indicated by Type; the rest stay nil.
type Property struct {
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	URL      *string       `json:"url,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
	UniqueID *UniqueID     `json:"unique_id,omitempty"`
}

// Page is one record of a database: an id plus a named property bag.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Database is a search result entry; its display name lives in Title.
type Database struct {
	ID    string     `json:"id"`
	Title []RichText `json:"title"`
}
