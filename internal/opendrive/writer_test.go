package opendrive

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/pipeline"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straight(id int, length float64) *attr.Element {
	return attr.New("road").Set("id", id).Add(
		attr.New("referenceLine").Add(attr.New("line").Set("length", length)),
	)
}

// generate runs a T-junction, a hill road and a connecting-road segment.
func generate(t *testing.T) *roadnet.Network {
	t.Helper()
	tj := attr.New("tjunction").Set("id", 1).Set("type", "MA").Add(
		attr.New("intersectionPoint").Set("refId", 1).Set("s", 50).Add(
			attr.New("adRoad").Set("id", 2).Set("s", 0).Set("angle", math.Pi/2),
		),
		straight(1, 100),
		straight(2, 50),
	)
	hill := attr.New("road").Set("id", 2).Add(
		straight(1, 40),
		attr.New("elevationProfile").Set("startR", 10).Set("endR", 10).Set("endElevation", 2),
	)
	arc := attr.New("road").Set("id", 1).Add(
		attr.New("referenceLine").Add(attr.New("arc").Set("length", 10).Set("R", 20)),
	)
	conn := attr.New("connectingRoad").Set("id", 3).Add(arc)
	root := attr.New(pipeline.RootName).Add(
		attr.New("segments").Add(tj, hill, conn),
		attr.New("links").Set("refId", 1).Set("reElev", 4).Add(
			attr.New("segmentLink").Set("fromSegment", 1).Set("fromRoad", 1).Set("fromPos", "start").
				Set("toSegment", 2).Set("toRoad", 1),
		),
	)
	res, err := pipeline.Run(context.Background(), root, pipeline.Options{})
	require.NoError(t, err)
	return res.Network
}

func roadElement(t *testing.T, doc *etree.Document, id string) *etree.Element {
	t.Helper()
	el := doc.FindElement("/OpenDRIVE/road[@id='" + id + "']")
	require.NotNil(t, el, "road %s", id)
	return el
}

func TestDocument(t *testing.T) {
	net := generate(t)
	doc := Document(net, Header{Name: "town", Version: "1.00", Date: "2026-10-19"})

	hdr := doc.FindElement("/OpenDRIVE/header")
	require.NotNil(t, hdr)
	assert.Equal(t, "1", hdr.SelectAttrValue("revMajor", ""))
	assert.Equal(t, "5", hdr.SelectAttrValue("revMinor", ""))
	assert.Equal(t, "town", hdr.SelectAttrValue("name", ""))
	assert.Equal(t, "roadweaver", hdr.SelectAttrValue("vendor", ""))

	assert.Len(t, doc.FindElements("/OpenDRIVE/road"), len(net.Roads))

	t.Run("junction membership", func(t *testing.T) {
		assert.Equal(t, "-1", roadElement(t, doc, "101").SelectAttrValue("junction", ""))
		assert.Equal(t, "1", roadElement(t, doc, "151").SelectAttrValue("junction", ""))
		assert.Equal(t, "-1", roadElement(t, doc, "301").SelectAttrValue("junction", ""))
	})

	t.Run("links", func(t *testing.T) {
		pred := roadElement(t, doc, "102").FindElement("link/predecessor")
		require.NotNil(t, pred)
		assert.Equal(t, "junction", pred.SelectAttrValue("elementType", ""))
		assert.Nil(t, pred.SelectAttr("contactPoint"))

		succ := roadElement(t, doc, "101").FindElement("link/successor")
		require.NotNil(t, succ)
		assert.Equal(t, "201", succ.SelectAttrValue("elementId", ""))
		assert.Equal(t, "start", succ.SelectAttrValue("contactPoint", ""))
		assert.Nil(t, roadElement(t, doc, "301").FindElement("link/successor"))
	})

	t.Run("plan view", func(t *testing.T) {
		arc := roadElement(t, doc, "301").FindElement("planView/geometry/arc")
		require.NotNil(t, arc)
		assert.Equal(t, "0.05", arc.SelectAttrValue("curvature", ""))
		assert.NotNil(t, roadElement(t, doc, "201").FindElement("planView/geometry/line"))
	})

	t.Run("elevation includes the offset", func(t *testing.T) {
		elev := roadElement(t, doc, "201").FindElements("elevationProfile/elevation")
		require.Len(t, elev, 3)
		assert.Equal(t, "4", elev[0].SelectAttrValue("a", ""))

		flat := roadElement(t, doc, "102").FindElements("elevationProfile/elevation")
		require.Len(t, flat, 1)
		assert.Equal(t, "0", flat[0].SelectAttrValue("a", ""))
	})

	t.Run("lanes", func(t *testing.T) {
		sec := roadElement(t, doc, "201").FindElement("lanes/laneSection")
		require.NotNil(t, sec)
		assert.Len(t, sec.FindElements("left/lane"), 1)
		assert.Len(t, sec.FindElements("center/lane"), 1)
		assert.Len(t, sec.FindElements("right/lane"), 1)
		assert.Nil(t, sec.FindElement("center/lane/width"))
		w := sec.FindElement("right/lane/width")
		require.NotNil(t, w)
		assert.Equal(t, "3.5", w.SelectAttrValue("a", ""))

		link := roadElement(t, doc, "151").FindElement("lanes/laneSection/right/lane/link/predecessor")
		require.NotNil(t, link)
	})

	t.Run("junction and controller", func(t *testing.T) {
		conns := doc.FindElements("/OpenDRIVE/junction[@id='1']/connection")
		require.Len(t, conns, 6)
		assert.Equal(t, "151", conns[0].SelectAttrValue("connectingRoad", ""))
		assert.Len(t, conns[0].FindElements("laneLink"), 1)
		assert.Empty(t, doc.FindElements("/OpenDRIVE/controller"))
	})
}

func TestWriteFile(t *testing.T) {
	net := generate(t)
	path := filepath.Join(t.TempDir(), "town.xodr")
	require.NoError(t, WriteFile(path, net, Header{Name: "town"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	assert.Len(t, doc.FindElements("/OpenDRIVE/road"), len(net.Roads))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, net, Header{Name: "town"}))
	assert.Equal(t, data, buf.Bytes())
}
