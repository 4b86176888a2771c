package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL bounds how long a rendered graph stays valid regardless of revision.
const cacheTTL = 24 * time.Hour

// checkCacheHit attempts to retrieve and validate a cached result.
func (f *GraphFactory) checkCacheHit(ctx context.Context, graph schema.LineGraph, endTime time.Time) *schema.LineGraphViewData {
	if f.Cache == nil || shouldSkipCache(ctx) {
		return nil
	}
	key, ok := f.generateCacheKey(ctx, graph, endTime)
	if !ok {
		return nil
	}

	data, version, ts, err := f.Cache.Get(key)
	if err != nil || data == nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || f.now().Sub(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var result schema.LineGraphViewData
	if err := json.Unmarshal(data, &result); err != nil {
		contract.LogDebug("discarding unreadable cache entry %s: %v", key, err)
		return nil
	}
	rebase(&result, endTime)
	return &result
}

// rebase moves x offsets of a cached result computed up to a slightly different end time,
// which happens for graphs ending now since keys only keep the end time to the minute.
func rebase(data *schema.LineGraphViewData, endTime time.Time) {
	shift := float64(data.EndTime.Sub(endTime).Milliseconds())
	data.EndTime = endTime
	if shift == 0 {
		return
	}
	for i := range data.Series {
		series := &data.Series[i]
		if !series.Plottable {
			continue
		}
		for j := range series.Points {
			series.Points[j].X += shift
		}
		series.MinMax.MinX += shift
		series.MinMax.MaxX += shift
	}
	if data.HasPlottableData {
		data.Bounds.MinX += shift
		data.Bounds.MaxX += shift
	}
}

// store writes a computed result to the cache. Failures only cost a recomputation later.
func (f *GraphFactory) store(ctx context.Context, graph schema.LineGraph, endTime time.Time, result *schema.LineGraphViewData) {
	if f.Cache == nil || shouldSkipCache(ctx) {
		return
	}
	key, ok := f.generateCacheKey(ctx, graph, endTime)
	if !ok {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		contract.LogDebug("cannot encode graph %q for caching: %v", graph.Name, err)
		return
	}
	if err := f.Cache.Set(key, data, currentCacheVersion, f.now().Unix()); err != nil {
		contract.LogWarn("failed to cache graph result", err)
	}
}

// generateCacheKey creates a unique key based on the graph, its window and the data revision.
// Sources that cannot report a revision are never cached.
func (f *GraphFactory) generateCacheKey(ctx context.Context, graph schema.LineGraph, endTime time.Time) (string, bool) {
	revisioned, ok := f.Source.(contract.Revisioned)
	if !ok {
		return "", false
	}
	revision, err := revisioned.Revision(ctx)
	if err != nil {
		contract.LogDebug("skipping cache, revision unavailable: %v", err)
		return "", false
	}

	definition, err := json.Marshal(graph)
	if err != nil {
		return "", false
	}

	key := fmt.Sprintf("%s:%d:%d:%d:%d:%d",
		definition,
		endTime.Truncate(contract.CacheGranularity).Unix(),
		revision,
		f.Prefs.FirstDayOfWeek,
		f.Prefs.StartTimeOfDay,
		xLabelBudget(ctx),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), true
}
