// Package writers renders feature trees and change events.
//
// Trees are converted to the pkg/api v1 schema first (ToAPI), so JSON and
// JSONL stay stable however the in-memory model changes. Renderers are
// looked up by format name in TreeWriters; the change stream is always
// JSONL.
package writers
