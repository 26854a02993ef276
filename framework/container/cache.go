package container

import (
	"reflect"
	"slices"
	"strings"
)

// argKey is the canonical form of an Args set: its pairs sorted by name.
// The plain Get of an id has the empty key.
type argKey []argPair

type argPair struct {
	name  string
	value any
}

// keyOf returns the cache key of args. ok is false when a value cannot be
// compared, in which case the result is never cached.
func keyOf(args Args) (key argKey, ok bool) {
	if len(args) == 0 {
		return nil, true
	}
	key = make(argKey, 0, len(args))
	for name, v := range args {
		if v != nil && !reflect.ValueOf(v).Comparable() {
			return nil, false
		}
		key = append(key, argPair{name: name, value: v})
	}
	slices.SortFunc(key, func(a, b argPair) int { return strings.Compare(a.name, b.name) })
	return key, true
}

func (k argKey) equal(o argKey) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i].name != o[i].name || k[i].value != o[i].value {
			return false
		}
	}
	return true
}

// entry is one cached value of an id.
type entry struct {
	args  argKey
	value any
}

func find(entries []entry, key argKey) (int, bool) {
	for i := range entries {
		if entries[i].args.equal(key) {
			return i, true
		}
	}
	return -1, false
}
