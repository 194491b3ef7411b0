// Package models defines server-side data models shared by the upload
// pipeline, the repositories and the transport layer.
package models

import (
	"strings"
	"time"
)

// FileType is the content category inferred from a filename.
type FileType string

const (
	FileTypeCode    FileType = "code"
	FileTypeImage   FileType = "image"
	FileTypeMusic   FileType = "music"
	FileTypeVideo   FileType = "video"
	FileTypePdf     FileType = "pdf"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"

	// FileTypeDir marks folder rows in the files table. It is never
	// inferred from a filename.
	FileTypeDir FileType = "dir"
)

var extensionTypes = map[string]FileType{
	"c": FileTypeCode, "cpp": FileTypeCode, "js": FileTypeCode, "ts": FileTypeCode, "rs": FileTypeCode,
	"py": FileTypeCode, "java": FileTypeCode, "html": FileTypeCode, "css": FileTypeCode, "sh": FileTypeCode,

	"png": FileTypeImage, "gif": FileTypeImage, "jpg": FileTypeImage, "jpeg": FileTypeImage,

	"mp3": FileTypeMusic, "ogg": FileTypeMusic, "flac": FileTypeMusic, "aac": FileTypeMusic, "wav": FileTypeMusic,

	"mp4": FileTypeVideo, "webm": FileTypeVideo, "mkv": FileTypeVideo, "avi": FileTypeVideo,
	"mov": FileTypeVideo, "flv": FileTypeVideo, "wmv": FileTypeVideo,

	"pdf": FileTypePdf,

	"txt": FileTypeText, "srt": FileTypeText, "vtt": FileTypeText, "md": FileTypeText,
	"json": FileTypeText, "yml": FileTypeText, "ini": FileTypeText, "conf": FileTypeText,
}

// InferFileType maps a filename to its category by the lowercased text after
// the last dot. Names without a dot, and unknown extensions, are FileTypeUnknown.
func InferFileType(filename string) FileType {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return FileTypeUnknown
	}
	if t, ok := extensionTypes[strings.ToLower(filename[i+1:])]; ok {
		return t
	}
	return FileTypeUnknown
}

// FileRecord is the row persisted for a finished upload.
type FileRecord struct {
	ID        int64     `json:"file_id,omitempty"`
	Filename  string    `json:"filename"`
	FileType  FileType  `json:"file_type"`
	Path      string    `json:"path"`
	Size      uint64    `json:"size"`
	OwnerID   int64     `json:"owner_id"`
	ParentID  int64     `json:"parent_id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
