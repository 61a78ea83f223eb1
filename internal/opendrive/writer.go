package opendrive

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/beevik/etree"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/preview"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

const (
	revMajor = 1
	revMinor = 5
	vendor   = "roadweaver"
)

// Header carries the document metadata that is not part of the network.
type Header struct {
	Name    string
	Version string
	Date    string
}

// Write encodes net as an indented OpenDRIVE document.
func Write(w io.Writer, net *roadnet.Network, h Header) error {
	doc := Document(net, h)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write OpenDRIVE document: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, replacing any existing file.
func WriteFile(path string, net *roadnet.Network, h Header) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, net, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Document builds the element tree for net.
func Document(net *roadnet.Network, h Header) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("OpenDRIVE")

	writeHeader(root, net, h)

	members := make(map[int]int)
	for _, j := range net.Junctions {
		for _, c := range j.Connections {
			members[c.ToRoad] = j.ID
		}
	}
	for i := range net.Roads {
		r := &net.Roads[i]
		junction := roadnet.None
		if id, ok := members[r.ID]; ok {
			junction = id
		}
		writeRoad(root, r, junction)
	}
	for _, c := range net.Controllers {
		ctrl := root.CreateElement("controller")
		setInt(ctrl, "id", c.ID)
		ctrl.CreateAttr("name", fmt.Sprintf("controller%d", c.ID))
		for _, sig := range c.SignalIDs {
			ctl := ctrl.CreateElement("control")
			setInt(ctl, "signalId", sig)
			ctl.CreateAttr("type", "0")
		}
	}
	for _, j := range net.Junctions {
		writeJunction(root, j)
	}

	doc.Indent(2)
	return doc
}

func writeHeader(root *etree.Element, net *roadnet.Network, h Header) {
	hdr := root.CreateElement("header")
	setInt(hdr, "revMajor", revMajor)
	setInt(hdr, "revMinor", revMinor)
	hdr.CreateAttr("name", h.Name)
	hdr.CreateAttr("version", h.Version)
	hdr.CreateAttr("date", h.Date)
	b := preview.Bound(net)
	setFloat(hdr, "north", b.Max.Y())
	setFloat(hdr, "south", b.Min.Y())
	setFloat(hdr, "east", b.Max.X())
	setFloat(hdr, "west", b.Min.X())
	hdr.CreateAttr("vendor", vendor)
}

func writeRoad(root *etree.Element, r *roadnet.Road, junction int) {
	el := root.CreateElement("road")
	el.CreateAttr("name", fmt.Sprintf("road%d", r.ID))
	setFloat(el, "length", r.Length)
	setInt(el, "id", r.ID)
	setInt(el, "junction", junction)

	link := el.CreateElement("link")
	writeLink(link, "predecessor", r.Predecessor)
	writeLink(link, "successor", r.Successor)

	typ := el.CreateElement("type")
	setFloat(typ, "s", 0)
	typ.CreateAttr("type", r.Type)

	pv := el.CreateElement("planView")
	for _, g := range r.Geometries {
		ge := pv.CreateElement("geometry")
		setFloat(ge, "s", g.S)
		setFloat(ge, "x", g.X)
		setFloat(ge, "y", g.Y)
		setFloat(ge, "hdg", g.Heading)
		setFloat(ge, "length", g.Length)
		switch g.Kind {
		case geometry.Line:
			ge.CreateElement("line")
		case geometry.Arc:
			setFloat(ge.CreateElement("arc"), "curvature", g.CurvStart)
		case geometry.Spiral:
			sp := ge.CreateElement("spiral")
			setFloat(sp, "curvStart", g.CurvStart)
			setFloat(sp, "curvEnd", g.CurvEnd)
		}
	}

	ep := el.CreateElement("elevationProfile")
	if len(r.Elevation) == 0 {
		writePoly(ep.CreateElement("elevation"), "s", 0, geometry.Const(r.ElevationOffset))
	}
	for _, e := range r.Elevation {
		p := e.Poly3
		p.A += r.ElevationOffset
		writePoly(ep.CreateElement("elevation"), "s", e.S, p)
	}
	el.CreateElement("lateralProfile")

	writeLanes(el.CreateElement("lanes"), r.LaneSections)
	writeObjects(el, r.Objects)
	writeSignals(el, r.Signals)
}

func writeLink(parent *etree.Element, tag string, l roadnet.Link) {
	if !l.Valid() {
		return
	}
	el := parent.CreateElement(tag)
	el.CreateAttr("elementType", string(l.ElementType))
	setInt(el, "elementId", l.ElementID)
	if l.ElementType == roadnet.ElementRoad {
		el.CreateAttr("contactPoint", string(l.ContactPoint))
	}
}

func writeLanes(lanes *etree.Element, sections []roadnet.LaneSection) {
	for _, ls := range sections {
		writePoly(lanes.CreateElement("laneOffset"), "s", ls.S, ls.Offset)
	}
	for _, ls := range sections {
		sec := lanes.CreateElement("laneSection")
		setFloat(sec, "s", ls.S)
		var left, center, right *etree.Element
		for _, l := range ls.Lanes {
			var side **etree.Element
			tag := "right"
			switch {
			case l.ID > 0:
				side, tag = &left, "left"
			case l.ID == 0:
				side, tag = &center, "center"
			default:
				side = &right
			}
			if *side == nil {
				*side = sec.CreateElement(tag)
			}
			writeLane((*side).CreateElement("lane"), l)
		}
	}
}

func writeLane(el *etree.Element, l roadnet.Lane) {
	setInt(el, "id", l.ID)
	el.CreateAttr("type", l.Type)
	el.CreateAttr("level", strconv.FormatBool(l.Level))

	if l.Predecessor != 0 || l.Successor != 0 {
		link := el.CreateElement("link")
		if l.Predecessor != 0 {
			setInt(link.CreateElement("predecessor"), "id", l.Predecessor)
		}
		if l.Successor != 0 {
			setInt(link.CreateElement("successor"), "id", l.Successor)
		}
	}
	if l.ID != 0 {
		writePoly(el.CreateElement("width"), "sOffset", 0, l.Width)
	}
	rm := el.CreateElement("roadMark")
	setFloat(rm, "sOffset", 0)
	rm.CreateAttr("type", l.RoadMark.Type)
	rm.CreateAttr("weight", l.RoadMark.Weight)
	rm.CreateAttr("color", l.RoadMark.Color)
	setFloat(rm, "width", l.RoadMark.Width)
	if l.ID == 0 {
		return
	}
	m := el.CreateElement("material")
	setFloat(m, "sOffset", 0)
	m.CreateAttr("surface", l.Material.Surface)
	setFloat(m, "friction", l.Material.Friction)
	setFloat(m, "roughness", l.Material.Roughness)
	if l.Speed > 0 {
		sp := el.CreateElement("speed")
		setFloat(sp, "sOffset", 0)
		setFloat(sp, "max", l.Speed)
	}
}

func writeObjects(road *etree.Element, objects []roadnet.Object) {
	if len(objects) == 0 {
		return
	}
	parent := road.CreateElement("objects")
	for _, o := range objects {
		el := parent.CreateElement("object")
		el.CreateAttr("type", o.Type)
		el.CreateAttr("name", o.Type)
		setInt(el, "id", o.ID)
		setFloat(el, "s", o.S)
		setFloat(el, "t", o.T)
		setFloat(el, "zOffset", o.Z)
		setFloat(el, "hdg", o.Heading)
		el.CreateAttr("orientation", o.Orientation)
		setFloat(el, "length", o.Length)
		setFloat(el, "width", o.Width)
		setFloat(el, "height", o.Height)
		if !o.Repeat {
			continue
		}
		rep := el.CreateElement("repeat")
		setFloat(rep, "s", o.S)
		setFloat(rep, "length", o.RepeatLength)
		setFloat(rep, "distance", o.Distance)
		for _, k := range []string{"tStart", "tEnd"} {
			setFloat(rep, k, o.T)
		}
		for _, k := range []string{"widthStart", "widthEnd"} {
			setFloat(rep, k, o.Width)
		}
		for _, k := range []string{"heightStart", "heightEnd"} {
			setFloat(rep, k, o.Height)
		}
		for _, k := range []string{"zOffsetStart", "zOffsetEnd"} {
			setFloat(rep, k, o.Z)
		}
	}
}

func writeSignals(road *etree.Element, signals []roadnet.Signal) {
	if len(signals) == 0 {
		return
	}
	parent := road.CreateElement("signals")
	for _, s := range signals {
		el := parent.CreateElement("signal")
		setFloat(el, "s", s.S)
		setFloat(el, "t", s.T)
		setInt(el, "id", s.ID)
		el.CreateAttr("name", fmt.Sprintf("signal%d", s.ID))
		el.CreateAttr("dynamic", yesNo(s.Dynamic))
		el.CreateAttr("orientation", s.Orientation)
		setFloat(el, "zOffset", s.Z)
		el.CreateAttr("country", s.Country)
		el.CreateAttr("type", s.Type)
		el.CreateAttr("subtype", s.Subtype)
		setFloat(el, "value", s.Value)
		setFloat(el, "height", s.Height)
		setFloat(el, "width", s.Width)
	}
}

func writeJunction(root *etree.Element, j roadnet.Junction) {
	el := root.CreateElement("junction")
	setInt(el, "id", j.ID)
	el.CreateAttr("name", fmt.Sprintf("junction%d", j.ID))
	for _, c := range j.Connections {
		conn := el.CreateElement("connection")
		setInt(conn, "id", c.ID)
		setInt(conn, "incomingRoad", c.FromRoad)
		setInt(conn, "connectingRoad", c.ToRoad)
		conn.CreateAttr("contactPoint", string(c.ContactPoint))
		for _, ll := range c.LaneLinks {
			lle := conn.CreateElement("laneLink")
			setInt(lle, "from", ll.From)
			setInt(lle, "to", ll.To)
		}
	}
}

func writePoly(el *etree.Element, key string, s float64, p geometry.Poly3) {
	setFloat(el, key, s)
	setFloat(el, "a", p.A)
	setFloat(el, "b", p.B)
	setFloat(el, "c", p.C)
	setFloat(el, "d", p.D)
}

func setFloat(el *etree.Element, key string, v float64) {
	el.CreateAttr(key, strconv.FormatFloat(v, 'g', -1, 64))
}

func setInt(el *etree.Element, key string, v int) {
	el.CreateAttr(key, strconv.Itoa(v))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
