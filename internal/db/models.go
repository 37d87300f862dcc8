package db

import (
	"mnemo/internal/models"
)

// MemoryModel represents the memories table in the database
type MemoryModel struct {
	ID            string  `gorm:"primaryKey;type:text"`
	Title         string  `gorm:"type:text;not null"`
	Content       string  `gorm:"type:text;not null"`
	Sector        string  `gorm:"type:text;not null;index"`
	Tags          string  `gorm:"type:text"` // JSON encoded
	Project       string  `gorm:"type:text;not null"`
	Source        *string `gorm:"type:text"`
	RelatedFiles  string  `gorm:"type:text"` // JSON encoded
	FilePath      string  `gorm:"type:text;not null"`
	SectionAnchor string  `gorm:"type:text"`
	CreatedAt     string  `gorm:"type:text;not null"`
	UpdatedAt     string  `gorm:"type:text;not null"`
	UpdatedCount  int     `gorm:"default:0"`
}

// TableName specifies the table name for GORM
func (MemoryModel) TableName() string {
	return "memories"
}

// MemoryDetailModel represents the memory_details table
type MemoryDetailModel struct {
	MemoryID string `gorm:"primaryKey;type:text"`
	Body     string `gorm:"type:text;not null"`
}

// TableName specifies the table name for GORM
func (MemoryDetailModel) TableName() string {
	return "memory_details"
}

// MetaModel represents the meta table
type MetaModel struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:text;not null"`
}

// TableName specifies the table name for GORM
func (MetaModel) TableName() string {
	return "meta"
}

// ToMemory converts MemoryModel to models.Memory
func (mm *MemoryModel) ToMemory() models.Memory {
	mem := models.Memory{
		ID:            mm.ID,
		Title:         mm.Title,
		Content:       mm.Content,
		Sector:        mm.Sector,
		Project:       mm.Project,
		FilePath:      mm.FilePath,
		SectionAnchor: mm.SectionAnchor,
		CreatedAt:     mm.CreatedAt,
		UpdatedAt:     mm.UpdatedAt,
	}

	if mm.Source != nil {
		mem.Source = mm.Source
	}

	return mem
}

// FromMemory converts models.Memory to MemoryModel
func (mm *MemoryModel) FromMemory(mem models.Memory, tagsJSON, relatedFilesJSON string) {
	mm.ID = mem.ID
	mm.Title = mem.Title
	mm.Content = mem.Content
	mm.Sector = mem.Sector
	mm.Tags = tagsJSON
	mm.Project = mem.Project
	mm.Source = mem.Source
	mm.RelatedFiles = relatedFilesJSON
	mm.FilePath = mem.FilePath
	mm.SectionAnchor = mem.SectionAnchor
	mm.CreatedAt = mem.CreatedAt
	mm.UpdatedAt = mem.UpdatedAt
}
