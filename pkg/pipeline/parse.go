package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/costgraph/pkg/cost"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/integrations/pipelines"
)

// ReadSnapshot builds a snapshot from saved API responses. Either file may
// be empty, in which case that part of the snapshot is empty.
func ReadSnapshot(pipeline, provider, pathsFile, costsFile string) (*pipelines.Snapshot, error) {
	snap := &pipelines.Snapshot{
		Pipeline: pipeline,
		Provider: provider,
		Paths:    []graph.PathRecord{},
		Costs:    []cost.Record{},
	}

	var latest time.Time
	if pathsFile != "" {
		paths, err := graph.ReadPathsFile(pathsFile)
		if err != nil {
			return nil, fmt.Errorf("read paths: %w", err)
		}
		snap.Paths = paths
		latest = modTime(pathsFile, latest)
	}
	if costsFile != "" {
		records, err := cost.ReadRecordsFile(costsFile)
		if err != nil {
			return nil, fmt.Errorf("read costs: %w", err)
		}
		snap.Costs = records
		latest = modTime(costsFile, latest)
	}
	snap.FetchedAt = latest.UTC()
	return snap, nil
}

// modTime returns the later of t and the file's modification time.
func modTime(path string, t time.Time) time.Time {
	info, err := os.Stat(path)
	if err != nil || info.ModTime().Before(t) {
		return t
	}
	return info.ModTime()
}
