package sqlite

// joinedRow couples one flat result row's parent entity with its
// optional child. A nil child marks a left-join row with no match.
type joinedRow[P any, C any] struct {
	key    string
	parent P
	child  *C
}

// materialize regroups an ordered run of flat rows into parent entities
// carrying their children. A new parent starts whenever the key changes
// from the previous row, so rows for one parent must arrive contiguous
// - the producing query upholds that with ORDER BY on the parent's
// creation time. Null-child rows establish the parent but contribute no
// child; attach is only called for real children, keeping child
// collections nil until the first one arrives. Single traversal, O(n).
func materialize[P any, C any](rows []joinedRow[P, C], attach func(*P, C)) []P {
	var (
		out     []P
		lastKey string
	)
	for i, r := range rows {
		if i == 0 || r.key != lastKey {
			out = append(out, r.parent)
			lastKey = r.key
		}
		if r.child != nil {
			attach(&out[len(out)-1], *r.child)
		}
	}
	return out
}
