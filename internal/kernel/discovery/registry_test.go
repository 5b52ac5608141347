package discovery

import (
	"sort"
	"testing"

	"github.com/josephwere/NeuroEdge/internal/kernel/mesh"
)

func TestRegisterNode(t *testing.T) {
	r := NewRegistry()
	r.RegisterNode(mesh.Node{ID: "n1", Name: "kernel", Kind: "kernel", IsActive: true})
	r.RegisterNode(mesh.Node{ID: "n2", Name: "vision", Kind: "engine", IsActive: true})

	node, ok := r.Node("n1")
	if !ok {
		t.Fatal("n1 should be registered")
	}
	if node.LastSeen.IsZero() {
		t.Error("LastSeen should be stamped on registration")
	}

	nodes := r.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("node count: got %d want 2", len(nodes))
	}
}

func TestReRegisterRefreshes(t *testing.T) {
	r := NewRegistry()
	r.RegisterNode(mesh.Node{ID: "n1", Address: "old"})
	r.RegisterNode(mesh.Node{ID: "n1", Address: "new"})

	node, _ := r.Node("n1")
	if node.Address != "new" {
		t.Errorf("re-registration should replace the node, address %q", node.Address)
	}
	if len(r.Nodes()) != 1 {
		t.Error("re-registration must not duplicate the node")
	}
}

func TestMarkInactive(t *testing.T) {
	r := NewRegistry()
	r.RegisterNode(mesh.Node{ID: "n1", IsActive: true})
	r.MarkInactive("n1")

	node, _ := r.Node("n1")
	if node.IsActive {
		t.Error("node should be inactive")
	}

	// Unknown IDs are a no-op.
	r.MarkInactive("ghost")
}

func TestCapabilities(t *testing.T) {
	r := NewRegistry()
	r.RegisterCapability(Capability{Name: "vision", Kind: "engine", Capabilities: []string{"thumbnail", "grayscale"}})
	r.RegisterCapability(Capability{Name: "optimizer", Kind: "engine", Capabilities: []string{"compute:optimize"}})

	caps := r.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("capability count: got %d want 2", len(caps))
	}
	names := []string{caps[0].Name, caps[1].Name}
	sort.Strings(names)
	if names[0] != "optimizer" || names[1] != "vision" {
		t.Errorf("unexpected capability names: %v", names)
	}
}
