package page

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLocation(t *testing.T) {
	is := is.New(t)
	is.Equal(Location(Log, ""), "log.html")
	is.Equal(Location(Commit, "abc"), "commit/abc.html")
	is.Equal(Location(Patch, "abc"), "commit/abc.patch")
	is.Equal(Location(Tree, ""), "tree/index.html")
	is.Equal(Location(Tree, "src/"), "tree/src/index.html")
	is.Equal(Location(File, "src/main.txt"), "blob/src/main.txt.html")
	is.Equal(Location(Raw, "img.png"), "raw/img.png")
	is.Equal(Location(Asset, "style.css"), "style.css")
}

func TestLocationDirectoryEscaping(t *testing.T) {
	is := is.New(t)
	is.Equal(Location(Tree, "index.html"), "tree/index%2Ehtml/index.html")
	is.Equal(Location(Tree, "a/index.html/b"), "tree/a/index%2Ehtml/b/index.html")
	is.Equal(Location(File, "a"), "blob/a.html")
	is.Equal(Location(File, "a.html/b"), "blob/a%2Ehtml/b.html")
	is.Equal(Location(File, "a.html"), "blob/a.html.html")
	is.Equal(Location(File, "100%/x"), "blob/100%25/x.html")
	is.Equal(Location(Tree, "100%2Ehtml"), "tree/100%252Ehtml/index.html")
	is.Equal(Location(Raw, "a.html/b"), "raw/a.html/b")
}

func TestLocationDistinct(t *testing.T) {
	is := is.New(t)
	paths := []string{
		"a", "a.html", "a.html/b", "a.html.html", "a%2Ehtml", "a%2Ehtml/b",
		"index.html", "index.html/x", "index%2Ehtml/x", "x/index.html", "x",
	}
	seen := map[string]string{}
	for _, p := range paths {
		for _, k := range []Kind{Tree, File} {
			loc := Location(k, p)
			prev, dup := seen[loc]
			is.True(!dup) // location already taken
			if dup {
				t.Logf("%s and %s/%s share %s", prev, k, p, loc)
			}
			seen[loc] = k.String() + "/" + p
		}
	}
	// No page location is a directory prefix of another.
	for a := range seen {
		for b := range seen {
			is.True(!strings.HasPrefix(b, a+"/"))
		}
	}
}

func TestKindOf(t *testing.T) {
	is := is.New(t)
	for _, k := range Kinds {
		for _, p := range []string{"abc", "src/index.html/a.html"} {
			if k == Log || k == Asset {
				p = "style.css"
			}
			got, ok := KindOf(Location(k, p))
			is.True(ok)
			is.Equal(got, k)
		}
	}
	_, ok := KindOf("commit/abc")
	is.True(!ok)
	_, ok = KindOf("")
	is.True(!ok)
}

func TestRel(t *testing.T) {
	cases := []struct {
		from, to, want string
	}{
		{"log.html", "commit/abc.html", "commit/abc.html"},
		{"commit/abc.html", "log.html", "../log.html"},
		{"commit/abc.html", "commit/def.html", "def.html"},
		{"tree/index.html", "tree/src/index.html", "src/index.html"},
		{"tree/src/index.html", "blob/src/main.txt.html", "../../blob/src/main.txt.html"},
		{"blob/src/main.txt.html", "style.css", "../../style.css"},
		{"tree/index.html", "blob/a b#c.txt.html", "../blob/a%20b%23c.txt.html"},
		{"tree/index.html", "tree/c:d/index.html", "./c:d/index.html"},
		{"blob/x.html", "raw/x", "../raw/x"},
		{"tree/index.html", "tree/index%2Ehtml/index.html", "index%252Ehtml/index.html"},
	}
	for _, c := range cases {
		t.Run(c.from+"->"+c.to, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Rel(c.from, c.to), c.want)
		})
	}
}
