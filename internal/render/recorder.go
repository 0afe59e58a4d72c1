package render

import (
	"sync"

	"github.com/emberline/survivor/internal/vmath"
)

// Node is the recorder's view of one spawned visual.
type Node struct {
	Kind   Kind
	Pos    vmath.Vec2
	Height float64
	Cue    Cue
}

// Recorder is a headless Attacher. It keeps every live node in memory and
// counts spawn/remove calls; kinds can be held "loading" to exercise the
// asset-late path.
type Recorder struct {
	mu      sync.Mutex
	nodes   map[Handle]*Node
	next    Handle
	loading map[Kind]bool
	spawned map[Kind]int
	removed map[Kind]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		nodes:   make(map[Handle]*Node, 256),
		loading: make(map[Kind]bool),
		spawned: make(map[Kind]int),
		removed: make(map[Kind]int),
	}
}

// SetLoading marks a kind as not yet ready (true) or ready (false).
func (r *Recorder) SetLoading(kind Kind, loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading[kind] = loading
}

func (r *Recorder) Ready(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.loading[kind]
}

func (r *Recorder) Spawn(kind Kind, pos vmath.Vec2) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading[kind] {
		return 0, ErrAssetNotReady
	}
	r.next++
	r.nodes[r.next] = &Node{Kind: kind, Pos: pos}
	r.spawned[kind]++
	return r.next, nil
}

func (r *Recorder) Move(h Handle, pos vmath.Vec2, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.nodes[h]; n != nil {
		n.Pos = pos
		n.Height = height
	}
}

func (r *Recorder) Tag(h Handle, cue Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.nodes[h]; n != nil {
		n.Cue = cue
	}
}

func (r *Recorder) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.nodes[h]; n != nil {
		r.removed[n.Kind]++
		delete(r.nodes, h)
	}
}

// Node returns a copy of the node for h.
func (r *Recorder) Node(h Handle) (Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[h]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Live returns the number of live nodes of a kind.
func (r *Recorder) Live(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.nodes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

// Spawned returns how many nodes of a kind were ever created.
func (r *Recorder) Spawned(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spawned[kind]
}

// Removed returns how many nodes of a kind were removed.
func (r *Recorder) Removed(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removed[kind]
}
