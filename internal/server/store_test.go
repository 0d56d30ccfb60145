package server

import (
	"testing"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

func TestImageStoreSequentialNames(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	n1, err := store.Save("cat.png", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	n2, err := store.Save("Holiday Photo.JPEG", []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if n1 != "image1.png" {
		t.Errorf("first name = %q, want image1.png", n1)
	}
	if n2 != "image2.jpeg" {
		t.Errorf("second name = %q, want image2.jpeg (lowercased extension)", n2)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "image1.png" || names[1] != "image2.jpeg" {
		t.Errorf("List = %v, want sequence order", names)
	}
}

func TestImageStoreResumesSequence(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.Save("x.png", []byte("d")); err != nil {
			t.Fatal(err)
		}
	}

	// A fresh store over the same directory continues the numbering.
	reopened, err := NewImageStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	name, err := reopened.Save("y.png", []byte("d"))
	if err != nil {
		t.Fatal(err)
	}
	if name != "image4.png" {
		t.Errorf("name after reopen = %q, want image4.png", name)
	}
}

func TestImageStoreReadDelete(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	name, err := store.Save("a.png", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := store.Read(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("Read = %q, want payload", data)
	}

	if err := store.Delete(name); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(name); errors.GetCode(err) != errors.ErrCodeImageNotFound {
		t.Errorf("second delete: code = %v, want %v", errors.GetCode(err), errors.ErrCodeImageNotFound)
	}
	if _, err := store.Read(name); errors.GetCode(err) != errors.ErrCodeImageNotFound {
		t.Errorf("read after delete: code = %v, want %v", errors.GetCode(err), errors.ErrCodeImageNotFound)
	}
}

func TestImageStoreRejectsUnsafeNames(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"../escape.png", "a/b.png", ".hidden.png", "", "note.txt"} {
		if _, err := store.Save(name, []byte("d")); !errors.IsValidation(err) {
			t.Errorf("Save(%q) should be rejected, got %v", name, err)
		}
	}
	if _, err := store.Read("../../etc/passwd"); !errors.IsValidation(err) {
		t.Error("Read with traversal should be rejected")
	}
}

func TestImageSeq(t *testing.T) {
	cases := []struct {
		name string
		n    int
		ok   bool
	}{
		{"image1.png", 1, true},
		{"image42.jpeg", 42, true},
		{"image.png", 0, false},
		{"image0.png", 0, false},
		{"photo3.png", 0, false},
		{"imageX.png", 0, false},
	}
	for _, tc := range cases {
		n, ok := imageSeq(tc.name)
		if n != tc.n || ok != tc.ok {
			t.Errorf("imageSeq(%q) = (%d, %v), want (%d, %v)", tc.name, n, ok, tc.n, tc.ok)
		}
	}
}
