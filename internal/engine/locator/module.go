package locator

import (
	"path"
	"strings"

	"utoipauto/internal/engine/discover"
	"utoipauto/internal/shared/util"
)

// ModuleName derives the namespace of file below root.
//
// With an explicit namespace, a file root is that namespace and files below a
// directory root append their relative path. Without one, the path after the
// last `src` directory is used under the default crate name.
func ModuleName(root discover.Root, rootIsDir bool, file string) string {
	if ns := strings.TrimSpace(root.Namespace); ns != "" {
		if !rootIsDir {
			return ns
		}
		return joinModule(ns, moduleSegments(util.RelativeSlash(root.Path, file)))
	}

	rel := util.NormalizePatternPath(file)
	segs := strings.Split(rel, "/")
	if idx := lastIndex(segs, "src"); idx >= 0 {
		rel = strings.Join(segs[idx+1:], "/")
	} else if rootIsDir {
		rel = util.RelativeSlash(root.Path, file)
	} else {
		rel = path.Base(rel)
	}
	return joinModule(discover.DefaultCrateName, moduleSegments(rel))
}

func moduleSegments(rel string) []string {
	rel = strings.TrimSuffix(rel, ".rs")

	var segs []string
	for _, seg := range strings.Split(rel, "/") {
		if seg != "" && seg != "." {
			segs = append(segs, strings.ReplaceAll(seg, "-", "_"))
		}
	}
	if n := len(segs); n > 0 && segs[n-1] == "mod" {
		segs = segs[:n-1]
	}
	if len(segs) == 1 && (segs[0] == "lib" || segs[0] == "main") {
		segs = nil
	}
	return segs
}

func joinModule(ns string, segs []string) string {
	if len(segs) == 0 {
		return ns
	}
	return ns + discover.Separator + strings.Join(segs, discover.Separator)
}

func lastIndex(segs []string, want string) int {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == want {
			return i
		}
	}
	return -1
}
