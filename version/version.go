package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the build information, preferring link-time values over the
// embedded VCS settings.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
}

// IsRelease reports whether the version is a tagged, clean build.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

// Short returns the version with the commit appended, e.g. 1.2.0-abc1234.
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.Commit
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String returns the short version followed by build time and Go version.
func (i Info) String() string {
	s := i.Short()
	if i.BuildTime != "" {
		s += " (built " + i.BuildTime + ")"
	}
	return fmt.Sprintf("%s %s", s, i.GoVersion)
}

// UserAgent returns a User-Agent value for product, e.g.
// "sessionctl/1.2.0 restkit".
func UserAgent(product string) string {
	return product + "/" + Get().Version + " restkit"
}
