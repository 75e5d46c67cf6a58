// Copyright (c) 2026 Toolshed Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"strings"
	"time"
)

// Tool categories offered in the submission form. CategoryOther is a
// sentinel: when selected, the caller supplies free text and the stored
// category becomes that text, never the sentinel itself.
const (
	CategoryNetworkSecurity  = "Network Security"
	CategoryWebSecurity      = "Web Security"
	CategoryPasswordSecurity = "Password Security"
	CategoryOther            = "Other"
)

// ToolCategories lists the selectable tool categories in form order.
var ToolCategories = []string{
	CategoryNetworkSecurity,
	CategoryWebSecurity,
	CategoryPasswordSecurity,
	CategoryOther,
}

// Tool is a directory entry for a security tool or snippet.
type Tool struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Language    sql.NullString `json:"language,omitempty"`
	Code        sql.NullString `json:"code,omitempty"`
	GithubURL   sql.NullString `json:"github_url,omitempty"`
	ImageURL    sql.NullString `json:"image_url,omitempty"`
	DatePosted  time.Time      `json:"date_posted"`
}

// BlogPost is a blog entry. Content is markdown source; rendering happens in
// the view layer. The slug is author-supplied and unique.
type BlogPost struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Excerpt       sql.NullString `json:"excerpt,omitempty"`
	Content       string         `json:"content"`
	FeaturedImage sql.NullString `json:"featured_image,omitempty"`
	Tags          sql.NullString `json:"tags,omitempty"`
	Published     bool           `json:"published"`
	DatePosted    time.Time      `json:"date_posted"`
}

// TagList splits the comma-delimited tags column into trimmed tags.
func (p *BlogPost) TagList() []string {
	if !p.Tags.Valid || p.Tags.String == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(p.Tags.String, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// News is a news item. Unlike BlogPost, the slug is always derived from the
// title by the slug allocator, never author-supplied.
type News struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	Slug       string         `json:"slug"`
	Excerpt    sql.NullString `json:"excerpt,omitempty"`
	Content    string         `json:"content"`
	ImageURL   sql.NullString `json:"image_url,omitempty"`
	Category   string         `json:"category"`
	DatePosted time.Time      `json:"date_posted"`
}

// Gallery file types.
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
	FileTypeCode  = "code"
)

// GalleryFileTypes lists the selectable gallery file types in form order.
var GalleryFileTypes = []string{FileTypeImage, FileTypeVideo, FileTypeCode}

// ValidFileType reports whether t is a known gallery file type.
func ValidFileType(t string) bool {
	return t == FileTypeImage || t == FileTypeVideo || t == FileTypeCode
}

// GalleryFile records an uploaded file. StoredRef is the opaque storage
// reference returned by the media gateway and is unique.
type GalleryFile struct {
	ID          int64          `json:"id"`
	Filename    string         `json:"filename"`
	StoredRef   string         `json:"stored_ref"`
	FileType    string         `json:"file_type"`
	Description sql.NullString `json:"description,omitempty"`
	Size        int64          `json:"size"`
	UploadDate  time.Time      `json:"upload_date"`
}
