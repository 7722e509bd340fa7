package mounts

import (
	"context"
	"log/slog"
	"sort"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
)

// UnknownMap groups mounts whose record carries no map name
const UnknownMap = "Unknown Map"

// Record is one mount as fetched during a single refresh
type Record struct {
	ID   hostapi.MountID
	Info hostapi.MountInfo
}

// DisplayName is the mount name, or its id when unnamed
func (r Record) DisplayName() string {
	if r.Info.Name != "" {
		return r.Info.Name
	}
	return r.ID.String()
}

// Group is all mounts of one map, in fetch order
type Group struct {
	Map    string
	Mounts []Record
}

// SkippedMount is an id whose metadata could not be fetched
type SkippedMount struct {
	ID  hostapi.MountID
	Err error
}

// Snapshot is the grouped, sorted result of one refresh
type Snapshot struct {
	Groups  []Group
	Skipped []SkippedMount
}

// Len returns the number of mounts across all groups
func (s Snapshot) Len() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Mounts)
	}
	return n
}

// Records returns every mount in display order
func (s Snapshot) Records() []Record {
	out := make([]Record, 0, s.Len())
	for _, g := range s.Groups {
		out = append(out, g.Mounts...)
	}
	return out
}

// InfoFetcher is the part of the host API FetchAll needs
type InfoFetcher interface {
	MountInfo(ctx context.Context, id hostapi.MountID) (*hostapi.MountInfo, error)
}

// FetchAll fetches the record of every id, one at a time and in order.
// Ids that fail are returned as skipped; they never discard the successes.
func FetchAll(ctx context.Context, client InfoFetcher, ids []hostapi.MountID, logger *slog.Logger) ([]Record, []SkippedMount) {
	records := make([]Record, 0, len(ids))
	var skipped []SkippedMount

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				skipped = append(skipped, SkippedMount{ID: rest, Err: err})
			}
			break
		}

		info, err := client.MountInfo(ctx, id)
		if err != nil {
			logger.Warn("error fetching camera info", "id", id, "error", err)
			skipped = append(skipped, SkippedMount{ID: id, Err: err})
			continue
		}
		records = append(records, Record{ID: id, Info: *info})
	}

	return records, skipped
}

// BuildSnapshot groups records by map name and orders the groups by ordinal
// string comparison. Within a group the input order is kept.
func BuildSnapshot(records []Record) Snapshot {
	byMap := make(map[string][]Record)
	for _, r := range records {
		key := r.Info.Map
		if key == "" {
			key = UnknownMap
		}
		byMap[key] = append(byMap[key], r)
	}

	keys := make([]string, 0, len(byMap))
	for k := range byMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Map: k, Mounts: byMap[k]})
	}
	return Snapshot{Groups: groups}
}
