package duplicates

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestFind_GroupsByBaseName(t *testing.T) {
	paths := []string{
		"/m1/src/main/java/app/Book.java",
		"/m2/src/main/java/data/Reader.java",
		"/m2/src/main/java/data/Book.java",
		"/m1/src/main/java/app/Main.kt",
	}

	groups := Find(paths, OrderName)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}
	if groups[0].Name != "Book.java" {
		t.Errorf("expected Book.java, got %q", groups[0].Name)
	}
	want := []string{"/m1/src/main/java/app/Book.java", "/m2/src/main/java/data/Book.java"}
	if !reflect.DeepEqual(groups[0].Paths, want) {
		t.Errorf("expected %v, got %v", want, groups[0].Paths)
	}
}

func TestFind_NoDuplicates(t *testing.T) {
	groups := Find([]string{"/a/Book.java", "/b/Reader.java"}, OrderName)
	if groups == nil || len(groups) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", groups)
	}
	if got := Find(nil, OrderFirstSeen); len(got) != 0 {
		t.Fatalf("expected empty result for nil input, got %v", got)
	}
}

func TestFind_CaseSensitive(t *testing.T) {
	groups := Find([]string{"/a/Book.java", "/b/book.java", "/c/Book.JAVA"}, OrderName)
	if len(groups) != 0 {
		t.Fatalf("expected no groups for case-different names, got %v", groups)
	}
}

func TestFind_RepeatedPathCountsOnce(t *testing.T) {
	groups := Find([]string{"/a/Book.java", "/a/Book.java"}, OrderName)
	if len(groups) != 0 {
		t.Fatalf("expected the same path not to collide with itself, got %v", groups)
	}
}

func TestFind_NoSeparator(t *testing.T) {
	groups := Find([]string{"Utils.kt", "/x/Utils.kt"}, OrderName)
	if len(groups) != 1 || len(groups[0].Paths) != 2 {
		t.Fatalf("expected bare name to group with nested path, got %v", groups)
	}
}

func TestFind_FirstSeenOrder(t *testing.T) {
	paths := []string{
		"/z/Zeta.java",
		"/b/Alpha.java",
		"/a/Zeta.java",
		"/a/Alpha.java",
	}

	groups := Find(paths, OrderFirstSeen)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", groups)
	}
	if groups[0].Name != "Zeta.java" || groups[1].Name != "Alpha.java" {
		t.Errorf("expected first-seen group order [Zeta Alpha], got [%s %s]", groups[0].Name, groups[1].Name)
	}
	if groups[0].Paths[0] != "/z/Zeta.java" || groups[0].Paths[1] != "/a/Zeta.java" {
		t.Errorf("expected discovery order within group, got %v", groups[0].Paths)
	}
}

func TestFind_NameOrderIsPermutationInvariant(t *testing.T) {
	paths := []string{
		"/m1/a/Book.java", "/m2/b/Book.java", "/m3/c/Book.java",
		"/m1/Utils.kt", "/m2/Utils.kt",
		"/m1/Only.java", "/m3/Other.java",
		"/m2/x/Adapter.java", "/m1/y/Adapter.java",
	}
	want := Find(paths, OrderName)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), paths...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Find(shuffled, OrderName); !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %d changed output:\nwant %v\ngot  %v", i, want, got)
		}
	}
}

func TestFind_UnionLaw(t *testing.T) {
	paths := []string{
		"/a/One.java", "/b/One.java",
		"/a/Two.java",
		"/a/Three.kt", "/b/Three.kt", "/c/Three.kt",
		"/d/Four.aidl",
	}

	groups := Find(paths, OrderFirstSeen)
	for _, g := range groups {
		if len(g.Paths) < 2 {
			t.Errorf("group %q has %d members", g.Name, len(g.Paths))
		}
	}

	got := Flatten(groups)
	sort.Strings(got)
	want := []string{"/a/One.java", "/a/Three.kt", "/b/One.java", "/b/Three.kt", "/c/Three.kt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected colliding union %v, got %v", want, got)
	}

	names, total := Summary(groups)
	if names != 2 || total != 5 {
		t.Errorf("expected summary (2, 5), got (%d, %d)", names, total)
	}
}

func TestParseOrder(t *testing.T) {
	cases := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{in: "", want: OrderName},
		{in: "name", want: OrderName},
		{in: "first-seen", want: OrderFirstSeen},
		{in: "random", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseOrder(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseOrder(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseOrder(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if OrderFirstSeen.String() != "first-seen" || OrderName.String() != "name" {
		t.Error("unexpected Order.String output")
	}
}
