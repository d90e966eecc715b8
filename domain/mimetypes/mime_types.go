package mimetypes

import (
	"mime"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

const (
	Folder      = "inode/directory"
	OctetStream = "application/octet-stream"
)

// Normalize returns the bare media type of contentType, with aliases resolved
// to their canonical name. Without a usable content type it guesses from the
// extension of name, and falls back to OctetStream.
func Normalize(contentType, name string) string {
	if mt := bare(contentType); mt != "" {
		if m := mimetype.Lookup(mt); m != nil {
			return bare(m.String())
		}
		return mt
	}
	if mt := bare(mime.TypeByExtension(path.Ext(name))); mt != "" {
		return mt
	}
	return OctetStream
}

func bare(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
