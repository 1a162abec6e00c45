// Package filesystem implements the DocumentParser port for local project
// folders. It handles plain text and markdown files; heavyweight formats
// (PDF, DOCX, scanned images) are expected to arrive pre-extracted as text
// with an optional front-matter block carrying their provenance.
package filesystem
