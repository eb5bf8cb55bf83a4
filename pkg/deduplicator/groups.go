package deduplicator

import (
	"sort"

	"github.com/Yuvraj-cyborg/deduck/pkg/hasher"
)

type Kind int

const (
	Exact Kind = iota
	Similar
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Similar:
		return "similar"
	default:
		return "unknown"
	}
}

// DuplicateGroup 一组内容相同或相似的文件，Paths[0] 是保留文件
type DuplicateGroup struct {
	// ID 精确分组为摘要，相似分组为基准图片路径
	ID    string
	Kind  Kind
	Paths []string
}

func (g DuplicateGroup) Keeper() string {
	if len(g.Paths) == 0 {
		return ""
	}
	return g.Paths[0]
}

func (g DuplicateGroup) Duplicates() []string {
	if len(g.Paths) < 2 {
		return nil
	}
	return g.Paths[1:]
}

// FromDigests 把包含两个及以上路径的摘要转换为精确分组，按摘要排序
func FromDigests(d hasher.Digests) []DuplicateGroup {
	var groups []DuplicateGroup
	for digest, paths := range d {
		if len(paths) < 2 {
			continue
		}
		sorted := append([]string(nil), paths...)
		sort.Strings(sorted)
		groups = append(groups, DuplicateGroup{ID: digest, Kind: Exact, Paths: sorted})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// FromSimilar 把相似匹配结果转换为分组，基准图片作为保留文件
func FromSimilar(matches map[string][]string) []DuplicateGroup {
	var groups []DuplicateGroup
	for base, similar := range matches {
		if len(similar) == 0 {
			continue
		}
		paths := make([]string, 0, len(similar)+1)
		paths = append(paths, base)
		paths = append(paths, similar...)
		groups = append(groups, DuplicateGroup{ID: base, Kind: Similar, Paths: paths})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// QuarantinePlan 返回所有分组中需要隔离的文件，按首次出现的顺序去重。
// 精确分组的重复文件总是被隔离，它们的内容由该组的保留文件保存。
// 相似分组的重复文件如果是任一分组的保留文件则不隔离。
func QuarantinePlan(groups []DuplicateGroup) []string {
	keepers := make(map[string]bool, len(groups))
	for _, g := range groups {
		if k := g.Keeper(); k != "" {
			keepers[k] = true
		}
	}

	seen := make(map[string]bool)
	var plan []string
	for _, g := range groups {
		for _, path := range g.Duplicates() {
			if seen[path] {
				continue
			}
			if g.Kind != Exact && keepers[path] {
				continue
			}
			seen[path] = true
			plan = append(plan, path)
		}
	}
	return plan
}
