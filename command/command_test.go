package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaterials map[string]struct {
	color     string
	thickness float64
}

func (f fakeMaterials) LookupMaterial(name string) (string, float64, bool) {
	m, ok := f[strings.ToLower(name)]
	return m.color, m.thickness, ok
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"p3..p6", []int{3, 4, 5, 6}},
		{"p6..p3", []int{3, 4, 5, 6}},
		{"3...5", []int{3, 4, 5}},
		{" P2 .. p 4 ", []int{2, 3, 4}},
		{"p7", []int{7}},
		{"12", []int{12}},
		{"p4..p4", []int{4}},
	}
	for _, tt := range tests {
		got, err := ParseIDs(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseIDsRangeHasNoGapsOrDuplicates(t *testing.T) {
	for a := -3; a <= 6; a++ {
		for b := -3; b <= 6; b++ {
			got, err := ParseIDs(PointRef(a) + ".." + PointRef(b))
			require.NoError(t, err)
			lo, hi := min(a, b), max(a, b)
			require.Len(t, got, hi-lo+1)
			for i, id := range got {
				require.Equal(t, lo+i, id)
			}
		}
	}
}

func TestParseIDsRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "3.5", ".", "p3....p6", "p1..p2..p3", "p..p2", "x3..p4"} {
		_, err := ParseIDs(in)
		require.Error(t, err, in)
		require.True(t, errors.Is(err, ErrMalformedRange), in)
	}
}

func TestRewriteExpandsCollectionRanges(t *testing.T) {
	p := NewPreprocessor(nil)
	cmd := p.Rewrite("AddToCollection(fal, [p3...p5])")
	require.Equal(t, AddToCollection{Collection: "fal", PointIDs: []int{3, 4, 5}}, cmd)
	require.Equal(t, "AddToCollection(fal, [p3, p4, p5])", cmd.Wire())

	cmd = p.Rewrite("addcollection(wall, [p1, p4..p2])")
	require.Equal(t, "AddCollection(wall, [p1, p2, p3, p4])", cmd.Wire())

	cmd = p.Rewrite("RemoveFromCollection(wall, [])")
	require.Equal(t, "RemoveFromCollection(wall, [])", cmd.Wire())
}

func TestRewriteLeavesMalformedCollectionUntouched(t *testing.T) {
	p := NewPreprocessor(nil)
	in := "AddToCollection(fal, [p3.p5])"
	require.Equal(t, Raw{Text: in}, p.Rewrite(in))
}

func TestRewriteResolvesMaterialNames(t *testing.T) {
	p := NewPreprocessor(fakeMaterials{"material 1": {"#ffffff", 2}})

	first := p.Rewrite(`Connect(p0, p1, "Material 1")`)
	second := p.Rewrite(`Connect(p0, p1, "Material 1")`)
	require.Equal(t, "Connect(p0, p1, #ffffff, 2)", first.Wire())
	require.Equal(t, first, second)

	require.Equal(t, "Connect(p0, p1, #ffffff, 2)", p.Rewrite("connect(p0,p1, MATERIAL 1)").Wire())
	require.Equal(t, "Connect(p0, p1, #ffffff, 2)", p.Rewrite("Connect(p0, p1, 'material 1')").Wire())
}

func TestRewriteForwardsUnresolvedConnect(t *testing.T) {
	p := NewPreprocessor(fakeMaterials{"steel": {"#888888", 3}})
	for _, in := range []string{
		"Connect(p0, p1, Unknown)",
		"Connect(p0, p1, #ff0000, 4)",
		"Connect(p0, [p1, p2], steel)",
	} {
		require.Equal(t, Raw{Text: in}, p.Rewrite(in), in)
	}
}

func TestRewriteLocalCommands(t *testing.T) {
	p := NewPreprocessor(nil)
	require.Equal(t, ShowIndexes{Mode: LabelsCoordinates}, p.Rewrite("ShowIndexes(1)"))
	require.Equal(t, ShowIndexes{Mode: LabelsID}, p.Rewrite("showindexes(0)"))
	require.Equal(t, ShowIndexes{Mode: LabelsID}, p.Rewrite("showindexes(7)"))
	require.Equal(t, ShowIndexes{Mode: LabelsID}, p.Rewrite("showindexes"))
	require.Equal(t, HideIndexes{}, p.Rewrite(" HideIndexes "))
	require.Equal(t, ClearHistory{}, p.Rewrite("clearhistory"))
	require.Nil(t, p.Rewrite("   "))
	require.Equal(t, Raw{Text: "Frobnicate(1)"}, p.Rewrite("Frobnicate(1)"))
}

func TestWireFormats(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{AddPoint{X: 1.5, Y: 0, Z: -2, Color: "#ffffff"}, "AddPoint(1.5, 0, -2, #ffffff)"},
		{Connect{From: PointRef(0), To: PointRef(1), Color: "#ffffff", Thickness: 2}, "Connect(p0, p1, #ffffff, 2)"},
		{AddFace{PointIDs: []int{0, 1, 2}, Color: "#888888"}, "AddFace([p0, p1, p2], #888888)"},
		{Color{PointID: 3, Color: "#ff0000"}, "Color(p3, #ff0000)"},
		{Move{PointID: 2, X: 5, Y: 5.25, Z: 0}, "Move(p2, 5, 5.25, 0)"},
		{Delete{Target: "p4"}, "Delete(p4)"},
		{RenameCollection{From: "fal", To: "wall"}, "RenameCollection(fal, wall)"},
		{AddClip{Target: 0, Type: "Move", Start: 0, End: 5, Axis: "y", Value: 5, ClipName: "Lift"}, `AddClip(p0, Move, 0, 5, y, 5, "Lift")`},
		{UpdateClip{ID: "c-1", ClipName: "Lift", Start: 1, End: 2.346}, "UpdateClip(c-1, Lift, 1.00, 2.35)"},
		{DeleteClip{ClipName: "Move1"}, "DeleteClip(Move1)"},
		{DeleteClipByID{ID: "c-1"}, "DeleteClipById(c-1)"},
		{Seek{Time: 2.5}, "Seek(2.5)"},
		{SaveProject{Project: "bridge"}, "SaveProject(bridge)"},
		{LoadProject{ID: "42"}, "LoadProject(42)"},
		{Play{}, "Play"},
		{Pause{}, "Pause"},
		{Stop{}, "Stop"},
		{Undo{}, "Undo"},
		{Redo{}, "Redo"},
		{Clear{}, "Clear"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.Wire())
	}
	assert.Equal(t, "Frobnicate", Raw{Text: "Frobnicate(1, 2)"}.Name())
	assert.True(t, IsLocal(HideIndexes{}))
	assert.False(t, IsLocal(Play{}))
}
