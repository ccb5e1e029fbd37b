package models

import (
	"path/filepath"
	"strings"
)

// AllowedUploadMimetypes maps accepted mimetypes to their canonical
// extension. jpg and jpeg are equivalent.
var AllowedUploadMimetypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// AllowedUploadExtensions lists accepted file extensions.
var AllowedUploadExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"}

// AllowedUploadMimetype reports whether the mimetype is in the allow-list.
func AllowedUploadMimetype(mimetype string) bool {
	_, ok := AllowedUploadMimetypes[strings.ToLower(mimetype)]
	return ok
}

// ExtensionMatchesMimetype checks that a filename extension agrees with the
// declared mimetype, case-insensitively, treating .jpeg as .jpg.
func ExtensionMatchesMimetype(filename, mimetype string) bool {
	expected, ok := AllowedUploadMimetypes[strings.ToLower(mimetype)]
	if !ok {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext == expected
}
