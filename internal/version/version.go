package version

import (
	"github.com/earthboundkid/versioninfo/v2"
)

// GetVersion returns the module version, or the short VCS revision for untagged builds
func GetVersion() string {
	return versioninfo.Short()
}

// GetFullVersion returns the version with revision and build time details
func GetFullVersion() string {
	ver := versioninfo.Version
	rev := versioninfo.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}

	out := ver
	if rev != "" && rev != "unknown" {
		out += " (commit: " + rev
		if versioninfo.DirtyBuild {
			out += ", dirty"
		}
		if !versioninfo.LastCommit.IsZero() {
			out += ", " + versioninfo.LastCommit.Format("2006-01-02")
		}
		out += ")"
	}
	return out
}
