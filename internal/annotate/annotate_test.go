// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package annotate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
)

const (
	proxyA = "1ProxyA000000000000000"
	proxyC = "1ProxyC000000000000000"
	proxyD = "1ProxyD000000000000000"
	proxyE = "1ProxyE000000000000000"
)

func load(t *testing.T, name string) *ifc.Model {
	t.Helper()
	m, err := ifc.Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return m
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("3Change%015d", n)
	}
}

func diff(old, cur *ifc.Model, category, compare string) differ.Result {
	ex, err := differ.ParseExtractor(compare)
	if err != nil {
		panic(err)
	}
	return differ.Diff(differ.BuildIndex(old, category), differ.BuildIndex(cur, category), ex)
}

func TestAnnotate(t *testing.T) {
	old, cur := load(t, "old.ifc"), load(t, "new.ifc")
	r := diff(old, cur, DefaultCategory, DefaultCompare)
	require.Len(t, r.Added, 1)
	require.Len(t, r.Deleted, 1)
	require.Len(t, r.Modified, 1, "only Proxy C was renamed")

	out, outcomes, err := Annotate(old, cur, r, Options{NewGlobalID: sequentialIDs()})
	require.NoError(t, err)

	assert.Equal(t, []Outcome{
		{GlobalID: proxyD, Kind: differ.Added, Styled: 1},
		{GlobalID: proxyC, Kind: differ.Modified, Styled: 1},
		{GlobalID: proxyA, Kind: differ.Deleted, Styled: 1},
	}, outcomes)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, string(cur.Source()[:cur.File().DataEnd])), "original content is kept verbatim")
	assert.True(t, strings.HasSuffix(text, "ENDSEC;\nEND-ISO-10303-21;\n"))
	assert.Contains(t, text, "=IFCCOLOURRGB('AddedColor',0.,1.,0.);")
	assert.Contains(t, text, "=IFCCOLOURRGB('ModifiedColor',1.,1.,0.);")
	assert.Contains(t, text, "=IFCCOLOURRGB('DeletedColor',1.,0.,0.);")
	assert.Contains(t, text, "=IFCSURFACESTYLE('AddedStyle',.BOTH.,(#")
	assert.Contains(t, text, "=IFCSTYLEDITEM(#161,(#")
	assert.NotContains(t, text, "IFCPRESENTATIONSTYLEASSIGNMENT")

	// The annotated file must load and expose the new property set.
	annotated, err := ifc.Parse(out)
	require.NoError(t, err)

	for guid, kind := range map[string]string{proxyD: "Added", proxyC: "Modified", proxyA: "Deleted"} {
		e, ok := annotated.EntityByGlobalID(guid)
		require.True(t, ok, guid)
		v, ok := e.Property(PropertySetName, PropertyName)
		require.True(t, ok, guid)
		assert.Equal(t, kind, v)
		assert.True(t, e.HasGeometry(), guid)
	}

	copied, _ := annotated.EntityByGlobalID(proxyA)
	assert.Greater(t, copied.ID(), cur.File().MaxID(), "deleted element is renumbered past the new model")
	assert.Equal(t, "Proxy A", copied.Name())
	h, ok := copied.OwnerHistory()
	require.True(t, ok)
	assert.Equal(t, "Amira ElSaeed", h.OwningUser)

	// Unchanged elements keep their ids and gain nothing.
	unchanged, _ := annotated.EntityByGlobalID("1ProxyB000000000000000")
	assert.Equal(t, int64(110), unchanged.ID())
	_, ok = unchanged.Property(PropertySetName, PropertyName)
	assert.False(t, ok)
}

func TestAnnotateNoGeometry(t *testing.T) {
	old, cur := load(t, "old.ifc"), load(t, "new.ifc")
	e, ok := cur.EntityByGlobalID(proxyE)
	require.True(t, ok)

	r := differ.Result{Modified: []differ.Change{{Kind: differ.Modified, GlobalID: proxyE, Entity: e}}}
	out, outcomes, err := Annotate(old, cur, r, Options{})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, ErrNoGeometry)
	assert.False(t, outcomes[0].OK())
	assert.Equal(t, cur.Source(), out, "nothing is added for an element without geometry")
}

func TestAnnotateSharedClosure(t *testing.T) {
	old, cur := load(t, "old.ifc"), load(t, "new.ifc")
	a, _ := old.EntityByGlobalID(proxyA)
	c, _ := old.EntityByGlobalID(proxyC)
	r := differ.Result{Deleted: []differ.Change{
		{Kind: differ.Deleted, GlobalID: proxyA, Entity: a},
		{Kind: differ.Deleted, GlobalID: proxyC, Entity: c},
	}}

	out, outcomes, err := Annotate(old, cur, r, Options{NewGlobalID: sequentialIDs()})
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
	// Owner history, person and placement are copied once.
	assert.Equal(t, 1, bytes.Count(out[cur.File().DataEnd:], []byte("IFCPERSON('amira'")))
}

const legacy = `ISO-10303-21;
HEADER;
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
#1=IFCOWNERHISTORY($,$,$,.ADDED.,$,$,$,0);
#2=IFCCARTESIANPOINT((0.,0.,0.));
#3=IFCBLOCK($,1.,1.,1.);
#4=IFCSHAPEREPRESENTATION($,'Body','CSG',(#3));
#5=IFCPRODUCTDEFINITIONSHAPE($,$,(#4));
#6=IFCBUILDINGELEMENTPROXY('1Legacy000000000000000',#1,'L',$,$,$,#5,$,$);
ENDSEC;
END-ISO-10303-21;
`

func TestAnnotateLegacySchema(t *testing.T) {
	cur, err := ifc.Parse([]byte(legacy))
	require.NoError(t, err)
	old, err := ifc.Parse([]byte(strings.Replace(legacy, "#6=IFCBUILDINGELEMENTPROXY('1Legacy000000000000000',#1,'L',$,$,$,#5,$,$);\n", "", 1)))
	require.NoError(t, err)

	r := diff(old, cur, "IfcElement", "")
	require.Len(t, r.Added, 1)

	out, outcomes, err := Annotate(old, cur, r, Options{NewGlobalID: sequentialIDs()})
	require.NoError(t, err)
	require.True(t, outcomes[0].OK())

	text := string(out)
	assert.Contains(t, text, "#10=IFCPRESENTATIONSTYLEASSIGNMENT((#9));")
	assert.Contains(t, text, "#11=IFCSTYLEDITEM(#3,(#10),$);")
	assert.Contains(t, text, "=IFCPROPERTYSET('3Change000000000000001',#1,'ChangeProperties',$,(#12));")
}

func TestAnnotateRequiresSource(t *testing.T) {
	cur := load(t, "new.ifc")
	_, _, err := Annotate(nil, ifc.FromFile(cur.File()), differ.Result{}, Options{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestTally(t *testing.T) {
	tally := Summarize([]Outcome{
		{Kind: differ.Added},
		{Kind: differ.Added, Err: ErrNoGeometry},
		{Kind: differ.Modified},
		{Kind: differ.Deleted},
		{Kind: differ.Deleted},
	})
	assert.Equal(t, Count{Success: 1, Failed: 1}, tally[differ.Added])
	assert.Equal(t, Count{Success: 4, Failed: 1}, tally.Total())

	var b bytes.Buffer
	require.NoError(t, tally.Write(&b))
	assert.Equal(t, `----- DETAILED REPORT -----
Added elements: 1 successful, 1 failed
Modified elements: 1 successful, 0 failed
Deleted elements: 2 successful, 0 failed
Total: 4 successful, 1 failed
`, b.String())
}
