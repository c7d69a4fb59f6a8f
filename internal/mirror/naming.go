package mirror

import (
	"fmt"
	"strings"
)

// nameSet hands out unique file names within one directory
type nameSet map[string]bool

// claim reserves name, or the first free "base (n).ext" variant when taken
func (s nameSet) claim(name string) string {
	if !s[name] {
		s[name] = true
		return name
	}

	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !s[candidate] {
			s[candidate] = true
			return candidate
		}
	}
}

// assignNames makes item file names unique per target directory, in item
// order. Subdirectory names are reserved first so a file never collides with
// a directory. Unplaced items keep their names.
func assignNames(items []ExportedItem, pm *PathMap, dirNames map[string][]string) {
	sets := make(map[string]nameSet)
	set := func(dir string) nameSet {
		s, ok := sets[dir]
		if !ok {
			s = make(nameSet)
			for _, d := range dirNames[dir] {
				s[d] = true
			}
			sets[dir] = s
		}
		return s
	}

	for i := range items {
		dir, ok := pm.Lookup(items[i].ParentContainerID)
		if !ok {
			continue
		}
		items[i].FileName = set(dir).claim(items[i].FileName)
	}
}
