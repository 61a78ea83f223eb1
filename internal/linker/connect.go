package linker

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
)

// Options configures the linker.
type Options struct {
	// ReferenceElevation is added to every propagated offset unless the
	// links declaration overrides it with reElev.
	ReferenceElevation float64
}

// end is one side of a declared segment link.
type end struct {
	segment int
	road    int
	contact roadnet.ContactPoint
}

// segmentLink is a resolved declaration.
type segmentLink struct {
	from, to end
}

// Connect applies the links child of root. Without one, linking is skipped
// with a warning and the first road becomes the reference road.
func Connect(ctx context.Context, net *roadnet.Network, root attr.Node, opts Options) error {
	logger := ctxlog.FromContext(ctx)
	net.RefElevation = opts.ReferenceElevation

	links, ok := root.Child("links")
	if !ok {
		net.Warn(ctx, roadnet.Warning{Segment: roadnet.None, Road: roadnet.None, Junction: roadnet.None,
			Message: "no links declared, segment linking skipped"})
		if len(net.Roads) > 0 {
			net.RefRoad = net.Roads[0].ID
		}
		return nil
	}

	refSegment, err := links.Int("refId")
	if err != nil {
		return err
	}
	if net.RefElevation, err = attr.FloatOr(links, "reElev", opts.ReferenceElevation); err != nil {
		return err
	}
	if err := setReferenceRoad(net, links, refSegment); err != nil {
		return err
	}

	var resolved []segmentLink
	for _, n := range links.Children("segmentLink") {
		sl, err := resolve(net, n)
		if err != nil {
			return err
		}
		apply(net, sl)
		resolved = append(resolved, sl)
	}
	logger.Debug("Linked segments.", "links", len(resolved))

	placed := place(net, refSegment, resolved)
	for _, seg := range segments(net) {
		if !placed[seg] {
			net.Warn(ctx, roadnet.Warning{Segment: seg, Road: roadnet.None, Junction: roadnet.None,
				Message: "segment is not connected to the reference segment and keeps its local placement"})
		}
	}
	logger.Info("Connected segments.", "reference_segment", refSegment, "reference_road", net.RefRoad,
		"placed", len(placed))
	return nil
}

func setReferenceRoad(net *roadnet.Network, links attr.Node, refSegment int) error {
	if links.Has("refRoad") {
		input, err := links.Int("refRoad")
		if err != nil {
			return err
		}
		id := segment.RoadID(refSegment, input)
		if !net.HasRoad(id) {
			return roadnet.Errorf(refSegment, "%w: reference road %d", roadnet.ErrUnresolved, id).WithRoad(id)
		}
		net.RefRoad = id
		return nil
	}
	ids := net.SegmentRoads(refSegment)
	if len(ids) == 0 {
		return roadnet.Errorf(refSegment, "%w: reference segment has no roads", roadnet.ErrUnresolved)
	}
	net.RefRoad = ids[0]
	return nil
}

// resolve finds the two roads of a segmentLink declaration.
func resolve(net *roadnet.Network, n attr.Node) (segmentLink, error) {
	var sl segmentLink
	var err error
	if sl.from, err = resolveEnd(net, n, "from"); err != nil {
		return sl, err
	}
	sl.to, err = resolveEnd(net, n, "to")
	return sl, err
}

func resolveEnd(net *roadnet.Network, n attr.Node, prefix string) (end, error) {
	seg, err := n.Int(prefix + "Segment")
	if err != nil {
		return end{}, err
	}
	input, err := n.Int(prefix + "Road")
	if err != nil {
		return end{}, err
	}
	def := roadnet.End
	if prefix == "to" {
		def = roadnet.Start
	}
	pos, err := attr.StringOr(n, prefix+"Pos", string(def))
	if err != nil {
		return end{}, err
	}
	cp := roadnet.ContactPoint(pos)
	if cp != roadnet.Start && cp != roadnet.End {
		return end{}, attr.InvalidError(n, prefix+"Pos", fmt.Errorf("want start or end, got %q", pos))
	}

	candidates := lo.Filter(net.Roads, func(r roadnet.Road, _ int) bool {
		return r.InputSegmentID == seg && r.InputID == input
	})
	if len(candidates) > 1 {
		candidates = lo.Filter(candidates, func(r roadnet.Road, _ int) bool { return r.InputPos == cp })
	}
	if len(candidates) != 1 {
		return end{}, roadnet.Errorf(seg, "%w: %s: no road %d at %s of segment %d",
			roadnet.ErrUnresolved, n.Path(), input, cp, seg)
	}
	r := candidates[0]
	if r.InJunction() {
		// Junction stubs start at the junction; only their far end is free.
		cp = roadnet.End
	}
	return end{segment: seg, road: r.ID, contact: cp}, nil
}

func apply(net *roadnet.Network, sl segmentLink) {
	from, _ := net.Road(sl.from.road)
	from.SetLink(sl.from.contact, roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: sl.to.road, ContactPoint: sl.to.contact})
	from.IsLinkedToNetwork = true
	to, _ := net.Road(sl.to.road)
	to.SetLink(sl.to.contact, roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: sl.from.road, ContactPoint: sl.from.contact})
	to.IsLinkedToNetwork = true
}

// place moves segments breadth-first from the reference segment so that the
// linked end of every newly reached segment meets its already placed partner.
// It returns the set of placed segments.
func place(net *roadnet.Network, ref int, links []segmentLink) map[int]bool {
	placed := map[int]bool{ref: true}
	queue := []int{ref}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sl := range links {
			src, dst := sl.from, sl.to
			if dst.segment == cur {
				src, dst = dst, src
			}
			if src.segment != cur || placed[dst.segment] {
				continue
			}
			srcRoad, _ := net.Road(src.road)
			dstRoad, _ := net.Road(dst.road)
			out := srcRoad.ContactPose(src.contact)
			in := dstRoad.ContactPose(dst.contact).Flip()
			m := geometry.MotionBetween(in, out)
			for _, id := range net.SegmentRoads(dst.segment) {
				r, _ := net.Road(id)
				r.Transform(m)
			}
			placed[dst.segment] = true
			queue = append(queue, dst.segment)
		}
	}
	return placed
}

func segments(net *roadnet.Network) []int {
	segs := lo.Uniq(lo.Map(net.Roads, func(r roadnet.Road, _ int) int { return r.InputSegmentID }))
	return lo.Filter(segs, func(s int, _ int) bool { return s != roadnet.None })
}
