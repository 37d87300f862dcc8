package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidSectors defines the memory sectors a memory can be filed into.
var ValidSectors = []string{"episodic", "semantic", "procedural", "emotional", "reflective"}

// SectorHeadings maps sector values to journal display headings.
var SectorHeadings = map[string]string{
	"episodic":   "Episodes",
	"semantic":   "Facts",
	"procedural": "Procedures",
	"emotional":  "Impressions",
	"reflective": "Reflections",
}

// NormalizeSector lowercases and validates a sector name. Anything outside
// the known set files into "semantic", the catch-all sector.
func NormalizeSector(sector string) string {
	s := strings.ToLower(strings.TrimSpace(sector))
	for _, valid := range ValidSectors {
		if s == valid {
			return s
		}
	}

	return "semantic"
}

// RawMemoryInput represents raw input for creating a memory before processing.
type RawMemoryInput struct {
	Title        string
	Content      string
	Sector       string
	Tags         []string
	RelatedFiles []string
	Details      *string
	Source       *string
}

// Memory represents a stored memory.
type Memory struct {
	ID            string
	Title         string
	Content       string
	Sector        string
	Tags          []string
	Project       string
	Source        *string
	RelatedFiles  []string
	FilePath      string
	SectionAnchor string
	CreatedAt     string
	UpdatedAt     string
}

// FromRaw creates a Memory from RawMemoryInput with generated fields.
func FromRaw(raw RawMemoryInput, project string, filePath string) Memory {
	now := time.Now().UTC().Format(time.RFC3339)

	return Memory{
		ID:            uuid.New().String(),
		Title:         raw.Title,
		Content:       raw.Content,
		Sector:        NormalizeSector(raw.Sector),
		Tags:          raw.Tags,
		Project:       project,
		Source:        raw.Source,
		RelatedFiles:  raw.RelatedFiles,
		FilePath:      filePath,
		SectionAnchor: generateAnchor(raw.Title),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// generateAnchor creates a URL-friendly anchor from a title.
func generateAnchor(title string) string {
	re := regexp.MustCompile(`[^a-z0-9]+`)
	anchor := strings.ToLower(title)
	anchor = re.ReplaceAllString(anchor, "-")
	anchor = strings.Trim(anchor, "-")

	return anchor
}

// MemoryDetail represents full details/body content for a memory.
type MemoryDetail struct {
	MemoryID string
	Body     string
}

// SearchResult represents a search result with score and metadata.
type SearchResult struct {
	ID         string
	Title      string
	Content    string
	Sector     string
	Tags       []string
	Project    string
	Source     *string
	Score      float64
	HasDetails bool
	FilePath   string
	CreatedAt  string
}
