package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Tag is set at link time: -ldflags "-X github.com/agalitsyn/tasks/version.Tag=v1.0.0".
var Tag string

type Info struct {
	Tag      string
	Revision string
	BuildAt  time.Time
	Dirty    bool
}

// Read collects VCS settings embedded by the go tool.
func Read() Info {
	info := Info{Tag: Tag}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromSettings(info, buildInfo.Settings)
}

func fromSettings(info Info, settings []debug.BuildSetting) Info {
	for _, setting := range settings {
		// https://pkg.go.dev/runtime/debug#BuildSetting
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				info.BuildAt = t
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	// go run
	if i.Revision == "" {
		return "dev"
	}

	rev := i.Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}
	s := fmt.Sprintf("%s %s", i.Tag, rev)
	if !i.BuildAt.IsZero() {
		s += " at " + i.BuildAt.Format(time.DateTime)
	}
	if i.Dirty {
		s += " dirty"
	}
	return s
}

func String() string {
	return Read().String()
}
