// Package buildinfo reports the costgraph version.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/costgraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/costgraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/costgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/costgraph
//
// Unstamped binaries built with go install fall back to the module version
// and VCS settings embedded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	v, c, d := resolve(debug.ReadBuildInfo())
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", v, c, d)
}

func resolve(info *debug.BuildInfo, ok bool) (version, commit, date string) {
	version, commit, date = Version, Commit, Date
	if !ok || info == nil {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "none":
			commit = s.Value
			if len(commit) > 7 {
				commit = commit[:7]
			}
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return
}
