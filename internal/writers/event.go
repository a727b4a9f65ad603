// internal/writers/event.go
package writers

import (
	"time"

	"github.com/google/uuid"

	"annotree/internal/feature"
	"annotree/pkg/api"
)

// NewEvent builds a change event. diff may be nil; when it is not, it is
// snapshotted so the caller may destroy it right after.
func NewEvent(kind, source, code string, stats api.StatsV1, diff *feature.Context, err error) api.EventV1 {
	ev := api.EventV1{
		ID:     uuid.New().String(),
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
		Kind:   kind,
		Source: source,
		Code:   code,
		Stats:  stats,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if diff != nil {
		t := ToAPI(diff)
		ev.Diff = &t
	}
	return ev
}
