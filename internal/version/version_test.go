package version

import (
	"strings"
	"testing"

	"github.com/earthboundkid/versioninfo/v2"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Fatal("GetVersion() returned an empty string")
	}
}

func TestGetFullVersion(t *testing.T) {
	full := GetFullVersion()
	if !strings.HasPrefix(full, versioninfo.Version) {
		t.Errorf("GetFullVersion() = %q, want prefix %q", full, versioninfo.Version)
	}
}
