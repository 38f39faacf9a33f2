package model

import "time"

// Document is a persisted, named unit of editable content.
// LastModified is stored as Unix milliseconds so the persisted blob matches the
// format the editor has always written to local storage.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	LastModified int64  `json:"lastModified"`
}

// DocumentPatch carries a partial update. Nil fields are left untouched.
type DocumentPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ModifiedAt returns LastModified as a time.Time.
func (d Document) ModifiedAt() time.Time {
	return time.UnixMilli(d.LastModified)
}

// Timestamp converts t into the LastModified representation.
func Timestamp(t time.Time) int64 {
	return t.UnixMilli()
}
