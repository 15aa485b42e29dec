package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is the version written with every persisted document.
const SchemaVersion = 1

// Document is the persisted envelope: the full job collection plus the
// schema version it was written at. Documents written before the
// envelope existed are a bare JSON array of jobs and decode as
// version 0.
type Document struct {
	Version int    `json:"version"`
	Jobs    []*Job `json:"jobs"`
}

// migrationStep upgrades a document from exactly one version to the
// next. Steps run in order and each must be idempotent.
type migrationStep struct {
	from  int
	name  string
	apply func(*Document)
}

var migrations = []migrationStep{
	{from: 0, name: "task-image-list", apply: migrateTaskImageList},
}

// migrateTaskImageList replaces the legacy single imageUrl field with
// the imageUrls list: a task with a non-empty legacy field yields a
// one-element list, a task with neither field yields an empty list.
func migrateTaskImageList(doc *Document) {
	for _, job := range doc.Jobs {
		for _, task := range job.Tasks {
			if task.ImageURLs == nil {
				if task.LegacyImageURL != "" {
					task.ImageURLs = []string{task.LegacyImageURL}
				} else {
					task.ImageURLs = []string{}
				}
			}
			task.LegacyImageURL = ""
		}
	}
}

// DecodeDocument deserializes a persisted document and upgrades it to
// the current schema version.
func DecodeDocument(raw []byte) (*Document, error) {
	doc := &Document{}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Legacy pre-envelope format: a bare array of jobs.
		if err := json.Unmarshal(trimmed, &doc.Jobs); err != nil {
			return nil, fmt.Errorf("failed to decode legacy document: %w", err)
		}
	} else {
		if err := json.Unmarshal(trimmed, doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
	}

	if doc.Jobs == nil {
		doc.Jobs = []*Job{}
	}

	Migrate(doc)
	return doc, nil
}

// EncodeDocument serializes the job collection at the current schema
// version.
func EncodeDocument(jobs []*Job) ([]byte, error) {
	if jobs == nil {
		jobs = []*Job{}
	}
	raw, err := json.Marshal(&Document{Version: SchemaVersion, Jobs: jobs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

// Migrate runs every migration step above the document's stored
// version and stamps the document with the current schema version.
// Calling it on an already-current document is a no-op.
func Migrate(doc *Document) {
	for _, step := range migrations {
		if doc.Version <= step.from {
			step.apply(doc)
			doc.Version = step.from + 1
		}
	}
	doc.Version = SchemaVersion
}
