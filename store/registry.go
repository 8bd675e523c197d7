package store

// Relationship defines a parent-child edge followed by cascading deletes.
type Relationship struct {
	// ParentKind is the owning collection (e.g., KindPost).
	ParentKind Kind

	// ChildKind is the dependent collection (e.g., KindLike).
	ChildKind Kind
}

// Registry holds the cascade relationships known to a Store.
type Registry struct {
	relationships []Relationship
	byParent      map[Kind][]Relationship
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		relationships: []Relationship{},
		byParent:      make(map[Kind][]Relationship),
	}
}

// DefaultRegistry returns the relationships the community model relies on:
// likes and comments belong to a post, reviews belong to a product.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Relationship{ParentKind: KindPost, ChildKind: KindLike})
	r.Register(Relationship{ParentKind: KindPost, ChildKind: KindComment})
	r.Register(Relationship{ParentKind: KindProduct, ChildKind: KindReview})
	return r
}

// Register adds a relationship to the registry. Registering the same edge
// twice has no effect.
func (r *Registry) Register(rel Relationship) {
	for _, existing := range r.byParent[rel.ParentKind] {
		if existing == rel {
			return
		}
	}
	r.relationships = append(r.relationships, rel)
	r.byParent[rel.ParentKind] = append(r.byParent[rel.ParentKind], rel)
}

// ChildrenOf returns all child relationships for a given parent kind.
func (r *Registry) ChildrenOf(parent Kind) []Relationship {
	return r.byParent[parent]
}

// AllRelationships returns all registered relationships.
func (r *Registry) AllRelationships() []Relationship {
	return r.relationships
}

// HasChildren returns true if the parent kind has any registered child relationships.
func (r *Registry) HasChildren(parent Kind) bool {
	return len(r.byParent[parent]) > 0
}
