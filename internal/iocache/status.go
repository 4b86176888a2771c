package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints result cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = contract.HeaderColor.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeFormat))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintStoreStatus prints point store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = contract.HeaderColor.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Revision: %d\n", status.Revision)
	_, _ = fmt.Fprintf(w, "Total Features: %d\n", status.TotalFeatures)
	_, _ = fmt.Fprintf(w, "Total Points: %d\n", status.TotalPoints)
	if status.TotalPoints > 0 {
		_, _ = fmt.Fprintf(w, "Last Point: %s\n", status.LastPointTime.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Point: %s\n", status.OldestPointTime.Format(statusTimeFormat))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
