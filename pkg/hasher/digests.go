package hasher

import "sort"

// Digests 摘要到路径列表的映射。空映射是单位元，Merge 按键合并路径列表，
// 满足结合律，并且除组内顺序外满足交换律，因此可以任意并行后再归并。
type Digests map[string][]string

func (d Digests) Add(digest, path string) {
	d[digest] = append(d[digest], path)
}

// Merge 将 other 并入 d 并返回 d
func (d Digests) Merge(other Digests) Digests {
	for digest, paths := range other {
		d[digest] = append(d[digest], paths...)
	}
	return d
}

// Sort 对每组路径按字典序排序，使保留文件的选择与调度顺序无关
func (d Digests) Sort() Digests {
	for _, paths := range d {
		sort.Strings(paths)
	}
	return d
}

// Duplicates 只保留包含两个及以上路径的摘要
func (d Digests) Duplicates() Digests {
	dups := make(Digests)
	for digest, paths := range d {
		if len(paths) > 1 {
			dups[digest] = paths
		}
	}
	return dups
}

func (d Digests) Len() int {
	n := 0
	for _, paths := range d {
		n += len(paths)
	}
	return n
}
