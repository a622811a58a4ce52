package application

import (
	"path"
	"sort"
	"strings"

	"github.com/designlens/designlens/internal/domain"
)

// ResolveTargets maps a changed-file set to the ViewTargets implicated by
// the config's view mappings, one target per implicated view and viewport.
// Output is sorted by view id then viewport for deterministic scheduling.
func ResolveTargets(cfg domain.ReviewConfig, changedFiles []string) []domain.ViewTarget {
	type viewInfo struct {
		route string
		files []string
	}
	implicated := make(map[string]*viewInfo)

	for _, mapping := range cfg.Views {
		for _, file := range changedFiles {
			if !matchPattern(mapping.Pattern, file) {
				continue
			}
			info, ok := implicated[mapping.ViewID]
			if !ok {
				info = &viewInfo{route: mapping.Route}
				implicated[mapping.ViewID] = info
			}
			info.files = append(info.files, file)
		}
	}

	ids := make([]string, 0, len(implicated))
	for id := range implicated {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var targets []domain.ViewTarget
	for _, id := range ids {
		info := implicated[id]
		sort.Strings(info.files)
		for _, vp := range cfg.Viewports {
			targets = append(targets, domain.ViewTarget{
				ID:          id,
				Route:       info.route,
				Viewport:    vp,
				SourceFiles: info.files,
			})
		}
	}
	return targets
}

// matchPattern matches a file path against a glob that may contain "**"
// for any number of path segments. Plain globs match per path.Match
// against the full path or its basename.
func matchPattern(pattern, file string) bool {
	pattern = path.Clean(strings.ReplaceAll(pattern, "\\", "/"))
	file = path.Clean(strings.ReplaceAll(file, "\\", "/"))

	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, file)
	}
	if ok, err := path.Match(pattern, file); err == nil && ok {
		return true
	}
	ok, err := path.Match(pattern, path.Base(file))
	return err == nil && ok
}

func matchDoublestar(pattern, file string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" {
		if !strings.HasPrefix(file, prefix+"/") && file != prefix {
			return false
		}
		file = strings.TrimPrefix(strings.TrimPrefix(file, prefix), "/")
	}
	if suffix == "" {
		return true
	}
	if strings.Contains(suffix, "**") {
		// Try the nested pattern against every remaining sub-path.
		segments := strings.Split(file, "/")
		for i := range segments {
			if matchDoublestar(suffix, strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	// Suffix must match the tail segments of the remaining path.
	segments := strings.Split(file, "/")
	want := strings.Split(suffix, "/")
	if len(want) > len(segments) {
		return false
	}
	tail := segments[len(segments)-len(want):]
	for i := range want {
		ok, err := path.Match(want[i], tail[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}
