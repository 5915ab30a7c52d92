// Package schemas holds the embedded JSON Schemas for greenlight's YAML
// configuration files.
package schemas

import _ "embed"

// ChecksSchemaJSON is the JSON Schema for checks.yaml files.
//
//go:embed checks.schema.json
var ChecksSchemaJSON string

// SnapshotSchemaJSON is the JSON Schema for snapshot YAML documents.
//
//go:embed snapshot.schema.json
var SnapshotSchemaJSON string
