package session

import (
	"reflect"
	"testing"

	"formspec-backend/internal/schema"
)

func att(name string, released *int) Attachment {
	var release func()
	if released != nil {
		release = func() { *released++ }
	}
	return NewAttachment(schema.FileInfo{Name: name, Size: 100, Type: "text/plain"}, release)
}

func TestFileSelection_AddAppends(t *testing.T) {
	sel := NewFileSelection(&schema.FieldDescriptor{ID: "docs", Type: schema.TypeFile})

	if err := sel.Add(att("a.txt", nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sel.Add(att("b.txt", nil), att("c.txt", nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A later add never replaces what's already selected
	names := fileNames(sel)
	if !reflect.DeepEqual(names, []string{"a.txt", "b.txt", "c.txt"}) {
		t.Fatalf("selection order: %v", names)
	}
}

func TestFileSelection_MaxFilesRejectsExcess(t *testing.T) {
	maxFiles := 2
	sel := NewFileSelection(&schema.FieldDescriptor{
		ID: "docs", Type: schema.TypeFile, MaxFiles: &maxFiles,
	})
	_ = sel.Add(att("a.txt", nil), att("b.txt", nil))

	// The selection is full: a further add is rejected outright and the
	// rejected attachment's release hook runs immediately
	var released int
	err := sel.Add(att("c.txt", &released))
	if err == nil {
		t.Fatal("expected rejection error at maxFiles")
	}
	if released != 1 {
		t.Fatalf("rejected attachment should be released, released=%d", released)
	}
	if sel.Len() != 2 {
		t.Fatalf("selection should keep what it had, len=%d", sel.Len())
	}
	if !reflect.DeepEqual(fileNames(sel), []string{"a.txt", "b.txt"}) {
		t.Fatalf("selection changed on rejection: %v", fileNames(sel))
	}
}

func TestFileSelection_PartialFitAccepted(t *testing.T) {
	maxFiles := 2
	sel := NewFileSelection(&schema.FieldDescriptor{
		ID: "docs", Type: schema.TypeFile, MaxFiles: &maxFiles,
	})
	_ = sel.Add(att("a.txt", nil))

	// One slot left, two offered: the first fits, the second is rejected
	var released int
	err := sel.Add(att("b.txt", nil), att("c.txt", &released))
	if err == nil {
		t.Fatal("expected error naming the rejected file count")
	}
	if !reflect.DeepEqual(fileNames(sel), []string{"a.txt", "b.txt"}) {
		t.Fatalf("expected fitting file accepted: %v", fileNames(sel))
	}
	if released != 1 {
		t.Fatalf("overflow attachment should be released, released=%d", released)
	}
}

func TestFileSelection_RemovePreservesOrder(t *testing.T) {
	sel := NewFileSelection(nil)
	var released int
	_ = sel.Add(att("a.txt", nil), att("b.txt", &released), att("c.txt", nil))

	sel.Remove(1)
	if !reflect.DeepEqual(fileNames(sel), []string{"a.txt", "c.txt"}) {
		t.Fatalf("remove should preserve relative order: %v", fileNames(sel))
	}
	if released != 1 {
		t.Fatalf("removed attachment should be released, released=%d", released)
	}

	// Out-of-range indices are ignored
	sel.Remove(-1)
	sel.Remove(10)
	if sel.Len() != 2 {
		t.Fatalf("out-of-range remove changed the selection, len=%d", sel.Len())
	}
}

func TestFileSelection_ClearReleasesAll(t *testing.T) {
	sel := NewFileSelection(nil)
	var released int
	_ = sel.Add(att("a.txt", &released), att("b.txt", &released))

	sel.Clear()
	if released != 2 {
		t.Fatalf("clear should release every attachment, released=%d", released)
	}
	if sel.Len() != 0 {
		t.Fatalf("clear should empty the selection, len=%d", sel.Len())
	}
}

func TestSession_RebindReleasesFileSelections(t *testing.T) {
	doc := &schema.Document{
		ID: "upload", Name: "Upload",
		Fields: []schema.FieldDescriptor{{ID: "docs", Type: schema.TypeFile}},
	}
	s := New()
	s.Bind(doc)

	var released int
	sel := NewFileSelection(doc.GetField("docs"))
	_ = sel.Add(att("a.txt", &released))
	_ = s.SetValue("docs", sel)

	// Re-binding tears down the old schema's resources, not just the values
	s.Bind(doc)
	if released != 1 {
		t.Fatalf("rebind should release held files, released=%d", released)
	}

	// Close does the same for the final teardown
	sel2 := NewFileSelection(doc.GetField("docs"))
	_ = sel2.Add(att("b.txt", &released))
	_ = s.SetValue("docs", sel2)
	s.Close()
	if released != 2 {
		t.Fatalf("close should release held files, released=%d", released)
	}
	if s.State() != Unbound {
		t.Fatalf("closed session should be Unbound, got %v", s.State())
	}
}

func fileNames(sel *FileSelection) []string {
	files := sel.Files()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
