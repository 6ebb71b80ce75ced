package testutil

// SearchTree is an unbalanced binary search tree of float64 keys. Tests
// insert grid energies in random order and use Floor as a reference for
// bisection results.
type SearchTree struct {
	root *node
	size int
}

type node struct {
	key         float64
	left, right *node
}

// Insert adds key; duplicates are ignored.
func (t *SearchTree) Insert(key float64) {
	link := &t.root
	for *link != nil {
		switch n := *link; {
		case key < n.key:
			link = &n.left
		case key > n.key:
			link = &n.right
		default:
			return
		}
	}
	*link = &node{key: key}
	t.size++
}

// Contains reports whether key was inserted.
func (t *SearchTree) Contains(key float64) bool {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return true
		}
	}
	return false
}

// Floor returns the largest key <= q.
func (t *SearchTree) Floor(q float64) (float64, bool) {
	var best float64
	found := false
	n := t.root
	for n != nil {
		if n.key <= q {
			best, found = n.key, true
			n = n.right
		} else {
			n = n.left
		}
	}
	return best, found
}

// Len returns the number of distinct keys.
func (t *SearchTree) Len() int { return t.size }
