package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func groupRows() []LookupItem {
	return []LookupItem{
		{ID: 1, Name: "IT"},
		{ID: 2, Name: "Support", ParentID: 1},
		{ID: 3, Name: "Network", ParentID: 1},
		{ID: 4, Name: "Level 2", ParentID: 2},
		{ID: 5, Name: "Accounting"},
	}
}

func TestBuildLookupTree_Flatten(t *testing.T) {
	root := BuildLookupTree(groupRows())

	got := root.Flatten()
	var names []string
	var levels []int
	for _, item := range got {
		names = append(names, item.Name)
		levels = append(levels, item.Level)
	}

	wantNames := []string{"Accounting", "IT", "Network", "Support", "Level 2"}
	wantLevels := []int{0, 0, 1, 1, 2}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantLevels, levels); diff != "" {
		t.Errorf("unexpected levels (-want +got):\n%s", diff)
	}
}

func TestLookupNode_Descendants(t *testing.T) {
	root := BuildLookupTree(groupRows())

	node := root.FindByID(1)
	if node == nil {
		t.Fatal("expected to find node 1")
	}

	if diff := cmp.Diff([]int64{1, 3, 2, 4}, node.Descendants()); diff != "" {
		t.Errorf("unexpected descendants (-want +got):\n%s", diff)
	}

	leaf := root.FindByID(5)
	if diff := cmp.Diff([]int64{5}, leaf.Descendants()); diff != "" {
		t.Errorf("unexpected leaf descendants (-want +got):\n%s", diff)
	}
}

func TestLookupNode_PathAndDepth(t *testing.T) {
	root := BuildLookupTree(groupRows())
	node := root.FindByID(4)

	if got := node.CompleteName(); got != "IT > Support > Level 2" {
		t.Errorf("expected complete name 'IT > Support > Level 2', got '%s'", got)
	}
	if got := node.GetDepth(); got != 3 {
		t.Errorf("expected depth 3, got %d", got)
	}
	if !root.FindByID(1).IsAncestorOf(node) {
		t.Error("expected IT to be an ancestor of Level 2")
	}
	if node.IsAncestorOf(root.FindByID(1)) {
		t.Error("expected Level 2 not to be an ancestor of IT")
	}
}

func TestBuildLookupTree_CycleAttachedToRoot(t *testing.T) {
	items := []LookupItem{
		{ID: 1, Name: "A", ParentID: 2},
		{ID: 2, Name: "B", ParentID: 1},
		{ID: 3, Name: "Self", ParentID: 3},
	}

	root := BuildLookupTree(items)

	if got := len(root.Flatten()); got != 3 {
		t.Fatalf("expected every row to be reachable, got %d", got)
	}
	if root.FindByID(3).Parent != root {
		t.Error("expected self-parented row under root")
	}
}

func TestBuildLookupTree_UnknownParent(t *testing.T) {
	root := BuildLookupTree([]LookupItem{{ID: 7, Name: "Orphan", ParentID: 99}})

	if len(root.Children) != 1 || root.Children[0].Item.ID != 7 {
		t.Fatalf("expected orphan under root, got %+v", root.Children)
	}
}
