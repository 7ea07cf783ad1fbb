package domain

import "time"

// ItemSource records where a moodboard item came from.
type ItemSource string

const (
	SourceUpload     ItemSource = "upload"
	SourcePexels     ItemSource = "pexels"
	SourceUnsplash   ItemSource = "unsplash"
	SourceAIEnhanced ItemSource = "ai-enhanced"
)

// MoodboardItem is a single image on a moodboard.
type MoodboardItem struct {
	ID                string
	MoodboardID       string
	Source            ItemSource
	URL               string
	OriginalURL       string
	EnhancedURL       string
	EnhancementStatus TaskStatus
	ShowingOriginal   bool
	Position          int
	UpdatedAt         time.Time
}

// DisplayURL projects the URL a viewer should see. It never mutates the item.
func (i MoodboardItem) DisplayURL() string {
	if i.ShowingOriginal && i.OriginalURL != "" {
		return i.OriginalURL
	}
	if i.EnhancedURL != "" {
		return i.EnhancedURL
	}
	return i.URL
}

// ToggleOriginal returns a copy with the revert flag flipped. URLs are untouched.
func (i MoodboardItem) ToggleOriginal() MoodboardItem {
	i.ShowingOriginal = !i.ShowingOriginal
	return i
}

// Apply merges a partial update into the item.
func (i MoodboardItem) Apply(p ItemPatch) MoodboardItem {
	if p.URL != nil {
		i.URL = *p.URL
	}
	if p.OriginalURL != nil {
		i.OriginalURL = *p.OriginalURL
	}
	if p.EnhancedURL != nil {
		i.EnhancedURL = *p.EnhancedURL
	}
	if p.EnhancementStatus != nil {
		i.EnhancementStatus = *p.EnhancementStatus
	}
	if p.ShowingOriginal != nil {
		i.ShowingOriginal = *p.ShowingOriginal
	}
	if p.Source != nil {
		i.Source = *p.Source
	}
	return i
}

// ItemPatch is a partial item update; nil fields are left as they are.
type ItemPatch struct {
	URL               *string
	OriginalURL       *string
	EnhancedURL       *string
	EnhancementStatus *TaskStatus
	ShowingOriginal   *bool
	Source            *ItemSource
}

// EnhancementLogEntry is appended once per completed enhancement and never changed.
type EnhancementLogEntry struct {
	ID              string
	MoodboardID     string
	ItemID          string
	OriginalURL     string
	EnhancedURL     string
	EnhancementType EnhancementType
	Provider        ProviderID
	TaskID          string
	Cost            int
	Attribution     string
	Timestamp       time.Time
}

// Moodboard aggregates items and their enhancement history.
type Moodboard struct {
	ID             string
	OwnerID        string
	Title          string
	Items          []MoodboardItem
	EnhancementLog []EnhancementLogEntry
}

// AppendEnhancement records a completed enhancement.
func (m *Moodboard) AppendEnhancement(entry EnhancementLogEntry) {
	m.EnhancementLog = append(m.EnhancementLog, entry)
}

// TotalCost sums the credits spent on enhancements for this moodboard.
func (m Moodboard) TotalCost() int {
	total := 0
	for _, e := range m.EnhancementLog {
		total += e.Cost
	}
	return total
}

// SourceBreakdown counts items per source.
func (m Moodboard) SourceBreakdown() map[ItemSource]int {
	out := make(map[ItemSource]int, 4)
	for _, item := range m.Items {
		out[item.Source]++
	}
	return out
}

// EnhancedCount returns how many items carry an enhanced version.
func (m Moodboard) EnhancedCount() int {
	n := 0
	for _, item := range m.Items {
		if item.EnhancedURL != "" {
			n++
		}
	}
	return n
}
