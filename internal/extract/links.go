// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path"
	"strings"
)

// maxLinkHops bounds symlink expansion; cyclic links fail resolution.
const maxLinkHops = 255

// linkTable records the symlinks an archive creates, keyed by their
// resolved location relative to the extraction root. Later entries are
// resolved through it, so a path is judged against the tree as it will
// exist on disk rather than as text.
type linkTable map[string]string

// resolve follows p (slash-separated, relative to the root) through the
// recorded links. It returns the resolved path, or false when p is
// absolute, climbs above the root, or loops.
func (lt linkTable) resolve(p string) (string, bool) {
	hops := 0
	return lt.walk(p, &hops)
}

func (lt linkTable) walk(p string, hops *int) (string, bool) {
	if path.IsAbs(p) {
		return "", false
	}

	var cur []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(cur) == 0 {
				return "", false
			}
			cur = cur[:len(cur)-1]
			continue
		}

		cur = append(cur, part)
		target, isLink := lt[strings.Join(cur, "/")]
		if !isLink {
			continue
		}

		*hops++
		if *hops > maxLinkHops {
			return "", false
		}
		next := target
		if parent := strings.Join(cur[:len(cur)-1], "/"); parent != "" && !path.IsAbs(target) {
			next = parent + "/" + target
		}
		resolved, ok := lt.walk(next, hops)
		if !ok {
			return "", false
		}
		cur = nil
		if resolved != "" {
			cur = strings.Split(resolved, "/")
		}
	}
	return strings.Join(cur, "/"), true
}

// add checks a symlink entry and records it. The link's own location is
// resolved through its parent only, since extraction replaces whatever
// sits at that name.
func (lt linkTable) add(name, target string) bool {
	clean := path.Clean(name)
	base := path.Base(clean)
	if path.IsAbs(clean) || base == ".." || base == "." || path.IsAbs(target) {
		return false
	}

	parent, ok := lt.resolve(path.Dir(clean))
	if !ok {
		return false
	}
	loc := base
	rel := target
	if parent != "" {
		loc = parent + "/" + base
		rel = parent + "/" + target
	}
	if _, ok := lt.resolve(rel); !ok {
		return false
	}

	lt[loc] = target
	return true
}
