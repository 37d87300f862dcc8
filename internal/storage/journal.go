package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mnemo/internal/models"
)

// JournalFileName returns the journal file name for a given date.
func JournalFileName(dateStr string) string {
	return fmt.Sprintf("%s.md", dateStr)
}

// WriteJournalEntry writes a memory into its sector journal under
// projectDir/<sector>/<date>.md. The file is created with frontmatter on
// first write; later writes append a new section and merge frontmatter
// tags and sources.
func WriteJournalEntry(projectDir string, mem models.Memory, dateStr string, details *string) (string, error) {
	sectorDir := filepath.Join(projectDir, mem.Sector)
	if err := os.MkdirAll(sectorDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sector directory: %w", err)
	}

	filePath := filepath.Join(sectorDir, JournalFileName(dateStr))
	sectionContent := renderSection(mem, details)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		content := createJournalFile(mem, dateStr, sectionContent)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write journal file: %w", err)
		}
	} else {
		existing, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read journal file: %w", err)
		}
		updated := appendToJournalFile(string(existing), mem, sectionContent)
		if err := os.WriteFile(filePath, []byte(updated), 0644); err != nil {
			return "", fmt.Errorf("failed to update journal file: %w", err)
		}
	}

	return filePath, nil
}

// renderSection renders a single H3 section from a Memory.
func renderSection(mem models.Memory, details *string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("### %s", mem.Title))
	lines = append(lines, mem.Content)

	if mem.Source != nil {
		lines = append(lines, fmt.Sprintf("**Source:** %s", *mem.Source))
	}

	if len(mem.RelatedFiles) > 0 {
		lines = append(lines, fmt.Sprintf("**Files:** %s", strings.Join(mem.RelatedFiles, ", ")))
	}

	if details != nil {
		lines = append(lines, "")
		lines = append(lines, "<details>")
		lines = append(lines, *details)
		lines = append(lines, "</details>")
	}

	return strings.Join(lines, "\n")
}

// createJournalFile creates a new journal file with frontmatter and the
// first section.
func createJournalFile(mem models.Memory, dateStr string, sectionContent string) string {
	now := time.Now().UTC().Format(time.RFC3339)

	sources := []string{}
	if mem.Source != nil {
		sources = append(sources, *mem.Source)
	}

	tags := make([]string, len(mem.Tags))
	copy(tags, mem.Tags)
	sort.Strings(tags)

	var lines []string
	lines = append(lines, "---")
	lines = append(lines, fmt.Sprintf("project: %s", mem.Project))
	lines = append(lines, fmt.Sprintf("sector: %s", mem.Sector))
	if len(sources) > 0 {
		lines = append(lines, fmt.Sprintf("sources: [%s]", strings.Join(sources, ", ")))
	}
	lines = append(lines, fmt.Sprintf("created: %s", now))
	if len(tags) > 0 {
		lines = append(lines, fmt.Sprintf("tags: [%s]", strings.Join(tags, ", ")))
	}
	lines = append(lines, "---")
	lines = append(lines, "")

	heading := models.SectorHeadings[mem.Sector]
	if heading == "" {
		heading = mem.Sector
	}
	lines = append(lines, fmt.Sprintf("# %s %s", dateStr, heading))
	lines = append(lines, "")
	lines = append(lines, sectionContent)

	return strings.Join(lines, "\n") + "\n"
}

// appendToJournalFile appends a section to an existing journal file and
// merges tags/sources into the frontmatter.
func appendToJournalFile(content string, mem models.Memory, sectionContent string) string {
	frontmatter, body := splitFrontmatter(content)

	if frontmatter == "" {
		return strings.TrimRight(content, "\n") + "\n\n" + sectionContent + "\n"
	}

	updated := updateFrontmatter(frontmatter, mem)
	body = strings.TrimRight(body, "\n")

	return updated + "\n" + body + "\n\n" + sectionContent + "\n"
}

// splitFrontmatter splits content into frontmatter and body.
func splitFrontmatter(content string) (string, string) {
	parts := strings.SplitN(content, "---\n", 3)
	if len(parts) >= 3 {
		frontmatter := "---\n" + parts[1] + "---"
		body := parts[2]
		return frontmatter, body
	}
	return "", content
}

// updateFrontmatter merges the memory's tags and source into the existing
// frontmatter lists.
func updateFrontmatter(frontmatter string, mem models.Memory) string {
	lines := strings.Split(frontmatter, "\n")

	existingTags := parseInlineList(lines, "tags:")
	existingSources := parseInlineList(lines, "sources:")

	// Merge and deduplicate tags
	allTags := make(map[string]bool)
	for _, t := range existingTags {
		allTags[strings.ToLower(t)] = true
	}
	for _, t := range mem.Tags {
		allTags[strings.ToLower(t)] = true
	}
	tagList := make([]string, 0, len(allTags))
	for t := range allTags {
		tagList = append(tagList, t)
	}
	sort.Strings(tagList)

	// Merge sources
	if mem.Source != nil {
		found := false
		for _, s := range existingSources {
			if s == *mem.Source {
				found = true
				break
			}
		}
		if !found {
			existingSources = append(existingSources, *mem.Source)
		}
	}

	var updatedLines []string
	sawTags, sawSources := false, false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "tags:"):
			sawTags = true
			updatedLines = append(updatedLines, fmt.Sprintf("tags: [%s]", strings.Join(tagList, ", ")))
		case strings.HasPrefix(line, "sources:"):
			sawSources = true
			updatedLines = append(updatedLines, fmt.Sprintf("sources: [%s]", strings.Join(existingSources, ", ")))
		default:
			updatedLines = append(updatedLines, line)
		}
	}

	// Lists absent from the original frontmatter get inserted before the
	// closing delimiter.
	insert := []string{}
	if !sawTags && len(tagList) > 0 {
		insert = append(insert, fmt.Sprintf("tags: [%s]", strings.Join(tagList, ", ")))
	}
	if !sawSources && len(existingSources) > 0 {
		insert = append(insert, fmt.Sprintf("sources: [%s]", strings.Join(existingSources, ", ")))
	}
	if len(insert) > 0 && len(updatedLines) > 0 {
		closing := updatedLines[len(updatedLines)-1]
		updatedLines = append(updatedLines[:len(updatedLines)-1], insert...)
		updatedLines = append(updatedLines, closing)
	}

	return strings.Join(updatedLines, "\n")
}

// parseInlineList extracts the entries of an inline "key: [a, b]" list.
func parseInlineList(lines []string, prefix string) []string {
	var out []string

	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		open := strings.Index(line, "[")
		if open == -1 {
			continue
		}

		end := strings.Index(line[open:], "]")
		if end == -1 {
			continue
		}

		for _, entry := range strings.Split(line[open+1:open+end], ",") {
			if e := strings.TrimSpace(entry); e != "" {
				out = append(out, e)
			}
		}
	}

	return out
}
