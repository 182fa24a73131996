package version

import (
	"fmt"
	"strings"
)

const (
	snapshotString    = "snapshot"
	developmentString = "development"
)

var (
	// Version Build Time Injected information
	Version    string
	CommitHash string
	BuildTime  string
	Prerelease string
	Snapshot   string
	OS         string
	Arch       string
	Branch     string
)

// GetVersion returns the version information in a human consumable way. It is what
// `mget --version` prints.
func GetVersion() string {
	return makeVersionString(Version, CommitHash, BuildTime, Prerelease, Snapshot, OS, Arch, Branch)
}

func makeVersionString(version, commitHash, buildTime, prerelease, snapshot, os, arch, branch string) string {
	if version == "" {
		version = developmentString
	}
	var b strings.Builder
	b.WriteString(version)
	if commitHash != "" {
		fmt.Fprintf(&b, "(%s)", commitHash)
	}

	switch {
	case prerelease != "":
		fmt.Fprintf(&b, "-%s", prerelease)
	case snapshot == "true":
		fmt.Fprintf(&b, "-%s", snapshotString)
	}

	if branch != "" && branch != "main" && branch != "HEAD" {
		fmt.Fprintf(&b, "[%s]", branch)
	}

	switch {
	case os != "" && arch != "":
		fmt.Fprintf(&b, "/%s-%s", os, arch)
	case os != "":
		fmt.Fprintf(&b, "/%s", os)
	}

	if buildTime != "" {
		fmt.Fprintf(&b, " built %s", buildTime)
	}
	return b.String()
}
