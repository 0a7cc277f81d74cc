package domain

// Tag is a node in the tag forest. Uniqueness is scoped to (name, parent), so
// the same leaf name may exist under different parents. The external
// identifier is the hierarchical name: the "/"-joined path from root to leaf.
type Tag struct {
	ID          int64
	Name        string
	Description *string
	ParentID    *int64
}

// TagNode is a tag with its resolved children, used for tree rendering.
type TagNode struct {
	Tag      Tag
	Children []*TagNode
}
