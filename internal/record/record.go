// Package record flattens Notion property bags into the shapes the rest of
// the service works with.
//
// Two policies coexist on purpose: CompetitorRecord keeps absent fields as
// JSON null for API consumers, while ReportRecord substitutes readable
// placeholders because its fields end up in an email body.
package record

import (
	"strconv"
	"strings"

	"github.com/yapa-dev/techwatch/internal/notion"
)

// CompetitorRecord is the flattened full-field view of one database page.
// Every field is optional: the remote schema is not enforced server-side,
// so absence maps to null, never an error.
type CompetitorRecord struct {
	Identifier                   *int    `json:"identifier"`
	CompetitorName               *string `json:"competitor_name"`
	ServicesOffered              *string `json:"services_offered"`
	Strengths                    *string `json:"strengths"`
	Weaknesses                   *string `json:"weaknesses"`
	DifferentiationOpportunities *string `json:"differentiation_opportunities"`
	Technologies                 *string `json:"technologies"`
	URLSource                    *string `json:"url_source"`
	AdditionalNotes              *string `json:"additional_notes"`
	CompetitorResearch           *string `json:"competitor_research"`
	FeatureAnalysis              *string `json:"feature_analysis"`
	Differentiation              *string `json:"differentiation"`
	CompetitorStatus             *string `json:"competitor_status"`
	Title                        *string `json:"title"`
	Content                      *string `json:"content"`
	LastUpdated                  *string `json:"last_updated"`
}

// ReportRecord is the enrichment subset of a page, with placeholder strings
// where data is missing. These values are rendered into the report email.
type ReportRecord struct {
	PageID     string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Date       string `json:"date"`
	Content    string `json:"content"`
	Status     string `json:"competitor_status"`
}

// Placeholders used by the report path.
const (
	PlaceholderIdentifier = "Not defined"
	PlaceholderTitle      = "Untitled"
	PlaceholderURL        = "Not available"
	PlaceholderDate       = "No date"
	PlaceholderContent    = "No content"
)

// Map flattens one page into a CompetitorRecord. Missing or type-mismatched
// properties resolve to nil.
func Map(p notion.Page) CompetitorRecord {
	props := p.Properties
	return CompetitorRecord{
		Identifier:                   UniqueIDNumber(props, "Identifier"),
		CompetitorName:               TitleText(props, "Competitor Name"),
		ServicesOffered:              RichTextText(props, "Services Offered"),
		Strengths:                    RichTextText(props, "Strengths"),
		Weaknesses:                   RichTextText(props, "Weaknesses"),
		DifferentiationOpportunities: RichTextText(props, "Differentiation Opportunities"),
		Technologies:                 RichTextText(props, "Technologies Used"),
		URLSource:                    URLValue(props, "URL/Source"),
		AdditionalNotes:              SelectName(props, "Additional Notes"),
		CompetitorResearch:           RichTextText(props, "Competitor Research"),
		FeatureAnalysis:              RichTextText(props, "Feature Analysis"),
		Differentiation:              RichTextText(props, "Differentiation"),
		CompetitorStatus:             StatusName(props, "Competitor Status"),
		Title:                        RichTextText(props, "Title"),
		Content:                      RichTextText(props, "Content"),
		LastUpdated:                  DateStart(props, "Last Updated"),
	}
}

// MapReport extracts the enrichment subset of a page, substituting
// placeholders for missing fields.
func MapReport(p notion.Page) ReportRecord {
	props := p.Properties
	return ReportRecord{
		PageID:     p.ID,
		Identifier: intOr(UniqueIDNumber(props, "Identifier"), PlaceholderIdentifier),
		Title:      stringOr(RichTextText(props, "Title"), PlaceholderTitle),
		URL:        stringOr(URLValue(props, "URL/Source"), PlaceholderURL),
		Date:       stringOr(DateStart(props, "Publication Date"), PlaceholderDate),
		Content:    stringOr(RichTextText(props, "Content"), PlaceholderContent),
		Status:     stringOr(SelectName(props, "Competitor Status"), ""),
	}
}

// TitleText returns the plain text of the first title segment, or nil.
func TitleText(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok {
		return nil
	}
	return firstPlainText(p.Title)
}

// RichTextText returns the plain text of the first rich_text segment, or nil.
func RichTextText(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok {
		return nil
	}
	return firstPlainText(p.RichText)
}

// SelectName returns the selected option's name, or nil.
func SelectName(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok || p.Select == nil {
		return nil
	}
	return nonEmpty(p.Select.Name)
}

// StatusName returns the status option's name, falling back to the select
// variant; some databases model the same column either way.
func StatusName(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok {
		return nil
	}
	if p.Status != nil {
		return nonEmpty(p.Status.Name)
	}
	if p.Select != nil {
		return nonEmpty(p.Select.Name)
	}
	return nil
}

// URLValue returns the raw URL string, or nil.
func URLValue(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok || p.URL == nil {
		return nil
	}
	return nonEmpty(*p.URL)
}

// DateStart returns the date property's start value, or nil.
func DateStart(props map[string]notion.Property, name string) *string {
	p, ok := props[name]
	if !ok || p.Date == nil {
		return nil
	}
	return nonEmpty(p.Date.Start)
}

// UniqueIDNumber returns the numeric component of a unique_id property, or nil.
func UniqueIDNumber(props map[string]notion.Property, name string) *int {
	p, ok := props[name]
	if !ok || p.UniqueID == nil || p.UniqueID.Number == nil {
		return nil
	}
	n := *p.UniqueID.Number
	return &n
}

// DatabaseName returns a database's display title, or fallback when the
// title array is empty or has no text content.
func DatabaseName(db notion.Database, fallback string) string {
	if len(db.Title) == 0 {
		return fallback
	}
	seg := db.Title[0]
	if seg.Text != nil && strings.TrimSpace(seg.Text.Content) != "" {
		return seg.Text.Content
	}
	if strings.TrimSpace(seg.PlainText) != "" {
		return seg.PlainText
	}
	return fallback
}

func firstPlainText(segments []notion.RichText) *string {
	if len(segments) == 0 {
		return nil
	}
	return nonEmpty(segments[0].PlainText)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func intOr(n *int, fallback string) string {
	if n == nil {
		return fallback
	}
	return strconv.Itoa(*n)
}
