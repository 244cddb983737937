package docpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_String(t *testing.T) {
	p := Root("", 1).Child("html", 0).Child("head", 1)
	assert.Equal(t, "root[1].html[0].head[1]", p.String())
}

func TestPath_String_WithBase(t *testing.T) {
	p := Root("guide.html", 0).Child("div", 2)
	assert.Equal(t, "guide.html.root[0].div[2]", p.String())
}

func TestPath_Parent(t *testing.T) {
	p := Root("", 0).Child("div", 1).Child("p", 0)
	assert.Equal(t, "root[0].div[1]", p.Parent().String())
	assert.Equal(t, "root[0]", p.Parent().Parent().String())
	assert.Equal(t, "", p.Parent().Parent().Parent().String())
}

func TestPath_ChildDoesNotMutateParent(t *testing.T) {
	p := Root("", 0)
	a := p.Child("div", 0)
	b := p.Child("div", 1)
	assert.Equal(t, "root[0].div[0]", a.String())
	assert.Equal(t, "root[0].div[1]", b.String())
	assert.Equal(t, "root[0]", p.String())
}

func TestPath_SameContainer(t *testing.T) {
	base := Root("", 0)

	tests := []struct {
		name string
		a, b Path
		want bool
	}{
		{
			name: "sibling elements same tag",
			a:    base.Child("div", 0),
			b:    base.Child("div", 1),
			want: true,
		},
		{
			name: "sibling elements different tag",
			a:    base.Child("div", 0),
			b:    base.Child("span", 1),
			want: false,
		},
		{
			name: "identical paths",
			a:    base.Child("div", 0).Child("p", 2),
			b:    base.Child("div", 0).Child("p", 2),
			want: true,
		},
		{
			name: "different containers",
			a:    Root("", 0).Child("div", 0),
			b:    Root("", 1).Child("div", 0),
			want: false,
		},
		{
			name: "different depth",
			a:    base.Child("div", 0),
			b:    base.Child("div", 0).Child("p", 0),
			want: false,
		},
		{
			name: "different base",
			a:    Root("a.html", 0).Child("p", 0),
			b:    Root("b.html", 0).Child("p", 0),
			want: false,
		},
		{
			name: "mid segment index differs",
			a:    base.Child("div", 0).Child("p", 0),
			b:    base.Child("div", 1).Child("p", 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.SameContainer(tt.b))
			assert.Equal(t, tt.want, tt.b.SameContainer(tt.a))
		})
	}
}

func TestPath_LastTag(t *testing.T) {
	assert.Equal(t, "p", Root("", 0).Child("p", 3).LastTag())
	assert.Equal(t, RootTag, Root("", 0).LastTag())
	assert.Equal(t, "", Path{}.LastTag())
}
