package geomap

import (
	"reflect"
	"sync"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
)

// OpKind discriminates layer operations.
type OpKind string

const (
	OpSetPins     OpKind = "set_pins"
	OpClearPins   OpKind = "clear_pins"
	OpSetHeatmap  OpKind = "set_heatmap"
	OpHideHeatmap OpKind = "hide_heatmap"
)

// LayerOp is one imperative mutation of the live map.
type LayerOp struct {
	Kind     OpKind
	Category record.Category   // pin ops only
	Pins     []RenderedPin     // OpSetPins
	Heatmap  *HeatmapLayerSpec // OpSetHeatmap
}

// MapHandle is the only imperative seam to the rendering layer.  Everything
// above it is a pure function of acquisition state.
type MapHandle interface {
	Apply(op LayerOp) error
}

// Surface owns the live map lifecycle: it diffs each snapshot against the
// previous one and applies only the operations for layers whose source data
// or visibility actually changed.  Pins are rebuilt (and re-jittered) only on
// such changes, so untouched categories keep stable display coordinates.
type Surface struct {
	handle   MapHandle
	resolver *Resolver
	logger   logging.Logger

	mu       sync.Mutex
	prev     acquisition.Snapshot
	prevVis  Visibility
	rendered bool
}

// NewSurface builds a Surface over a map handle.
func NewSurface(handle MapHandle, resolver *Resolver, log logging.Logger) *Surface {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Surface{handle: handle, resolver: resolver, logger: log}
}

// Render reconciles the map with a snapshot.  Returns the operations that
// were applied.
func (s *Surface) Render(snap acquisition.Snapshot, vis Visibility) []LayerOp {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := s.diffLocked(snap, vis)
	for _, op := range ops {
		if err := s.handle.Apply(op); err != nil {
			s.logger.Error("map operation failed",
				logging.String("op", string(op.Kind)),
				logging.String("category", string(op.Category)),
				logging.Err(err),
			)
		}
	}
	s.prev = snap
	s.prevVis = vis
	s.rendered = true
	return ops
}

func (s *Surface) diffLocked(next acquisition.Snapshot, vis Visibility) []LayerOp {
	var ops []LayerOp

	type pinLayer struct {
		category record.Category
		prevHide bool
		nextHide bool
		changed  bool
	}
	layers := []pinLayer{
		{record.CategoryCompetitors, s.prevVis.HideCompetitors, vis.HideCompetitors,
			!reflect.DeepEqual(s.prev.Competitors, next.Competitors)},
		{record.CategoryCofounders, s.prevVis.HideCofounders, vis.HideCofounders,
			!reflect.DeepEqual(s.prev.Cofounders, next.Cofounders)},
		{record.CategoryInvestors, s.prevVis.HideInvestors, vis.HideInvestors,
			!reflect.DeepEqual(s.prev.Investors, next.Investors)},
	}

	for _, layer := range layers {
		if s.rendered && !layer.changed && layer.prevHide == layer.nextHide {
			continue
		}
		if layer.nextHide {
			ops = append(ops, LayerOp{Kind: OpClearPins, Category: layer.category})
			continue
		}
		only := Visibility{
			HideCompetitors: layer.category != record.CategoryCompetitors,
			HideCofounders:  layer.category != record.CategoryCofounders,
			HideInvestors:   layer.category != record.CategoryInvestors,
		}
		ops = append(ops, LayerOp{
			Kind:     OpSetPins,
			Category: layer.category,
			Pins:     BuildPins(next, only, s.resolver),
		})
	}

	if !s.rendered || !reflect.DeepEqual(s.prev.Demographics, next.Demographics) {
		spec := BuildHeatmapLayer(next.Demographics)
		if spec.Visible {
			ops = append(ops, LayerOp{Kind: OpSetHeatmap, Heatmap: &spec})
		} else {
			ops = append(ops, LayerOp{Kind: OpHideHeatmap})
		}
	}
	return ops
}

// Reset clears the diff baseline, forcing the next Render to rebuild every
// layer.  Called after a style swap re-attaches overlays.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.rendered = false
	s.prev = acquisition.Snapshot{}
	s.prevVis = Visibility{}
	s.mu.Unlock()
}
