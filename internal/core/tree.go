package core

// ParseTree is the ordered sequence of steps plus the reverse-lookup maps
// the index builder computes from them. It is the engine's sole input.
//
// Steps is indexable and order-preserving: a step's position in Steps is
// its declaration order and the index used everywhere else in the engine
// (Step.Parents/Children, DAG vertices, selection results).
//
// The lookup maps are built once, by index.Build, and are immutable
// afterwards; nothing in the engine mutates a ParseTree's maps once built.
type ParseTree struct {
	Steps []*Step

	// OutputMapLookup is used for literal (non-regex) output target
	// matching: path -> producing step indices, under the union of raw,
	// slash-cleaned, and normalized forms.
	OutputMapLookup map[string][]int

	// OutputMapLookupRegexp is used for regex output target matching:
	// path -> producing step indices, under raw and slash-cleaned forms
	// only, so paths are matched in the form the user declared them.
	OutputMapLookupRegexp map[string][]int

	OutputTagsMap map[string][]int
	InputTagsMap  map[string][]int
	MethodMap     map[string][]int

	NormalizedOutputMap map[string][]int
	NormalizedInputMap  map[string][]int

	// built is set once index.Build has populated the maps and step
	// parent/child lists above, so later stages can assert the tree is
	// ready without re-deriving that from nil-ness of individual maps.
	built bool
}

// NewParseTree wraps a raw step slice. The returned tree has no lookup
// maps yet; call index.Build before using it with any other component.
func NewParseTree(steps []*Step) *ParseTree {
	return &ParseTree{Steps: steps}
}

// MarkBuilt records that index.Build has finished populating this tree.
// It is called by index.Build itself; other packages only read it.
func (t *ParseTree) MarkBuilt() { t.built = true }

// Built reports whether index.Build has run on this tree.
func (t *ParseTree) Built() bool { return t.built }

// Len returns the number of steps.
func (t *ParseTree) Len() int { return len(t.Steps) }
