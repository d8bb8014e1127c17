package fields

import (
	"image"

	"github.com/disintegration/gift"

	"metrosim/internal/config"
	"metrosim/internal/quadtree"
)

// blurLandValue smooths raw land value and raw construction cost into
// LandValue.LandValue and LandValue.ConstructionCost, each over its own
// radius.
func blurLandValue(world *World, cfg config.Config) error {
	if err := performFieldBlur(world, cfg, landValueBlurRadius, 2.0,
		func(f FieldsState) float64 { return f.RawLandValue.RawLandValue },
		func(f *FieldsState, value float64, width uint64) {
			f.LandValue.LandValue = WeightedAverage{Value: value, Count: width * width}
		},
	); err != nil {
		return err
	}

	return performFieldBlur(world, cfg, constructionCostBlurRadius, 2.0,
		func(f FieldsState) float64 { return f.RawLandValue.RawConstructionCost },
		func(f *FieldsState, value float64, width uint64) {
			f.LandValue.ConstructionCost = WeightedAverage{Value: value, Count: width * width}
		},
	)
}

// demandDensityScale converts a demand density (residents-without-a-job
// per tile-area) into the 0-255 range a Gaussian blur pass over a byte
// buffer needs.
const demandDensityScale = 10.0

// blurWorkplaceDemand smooths raw workplace demand density into
// Demand.WorkplaceDemand.
func blurWorkplaceDemand(world *World, cfg config.Config) error {
	return performFieldBlur(world, cfg, workplaceDemandBlurRadius, demandDensityScale,
		func(f FieldsState) float64 { return f.RawDemand.RawWorkplaceDemand.Density() },
		func(f *FieldsState, value float64, width uint64) {
			f.Demand.WorkplaceDemand = WeightedAverage{Value: value, Count: width * width}
		},
	)
}

// performFieldBlur downsamples a leaf-level scalar field (via getter)
// onto a power-of-two grid sized so each cell covers roughly
// fieldBlockSize meters, Gaussian-blurs that grid at radius (in
// meters), then writes the blurred value back at every leaf (via
// setter, alongside that leaf's own area) using the grid cell at the
// leaf's center.
func performFieldBlur(world *World, cfg config.Config, radius, scale float64, getter func(FieldsState) float64, setter func(*FieldsState, float64, uint64)) error {
	downsample := uint64(cfg.EvenDownsample(fieldBlockSize))
	sigma := radius / float64(cfg.MinTileSize) / float64(downsample)

	dim := world.Width() / downsample
	if dim == 0 {
		dim = 1
	}

	sum := make([]float64, dim*dim)
	count := make([]uint64, dim*dim)
	collector := &blurInputVisitor{sum: sum, count: count, dim: dim, downsample: downsample, getter: getter}
	if err := world.Visit(collector); err != nil {
		return err
	}

	buffer := make([]float64, dim*dim)
	for i := range buffer {
		if count[i] > 0 {
			buffer[i] = sum[i] / float64(count[i])
		}
	}

	blurred := gaussianBlurBuffer(buffer, int(dim), sigma, scale)

	applier := &blurOutputVisitor{buffer: blurred, dim: dim, downsample: downsample, setter: setter}
	return world.Visit(applier)
}

// gaussianBlurBuffer runs a single-channel Gaussian blur over a square
// buffer of arbitrary-range float64 samples, by scaling into an 8-bit
// grayscale image, blurring with gift, and scaling back.
func gaussianBlurBuffer(values []float64, dim int, sigma, scale float64) []float64 {
	src := image.NewGray(image.Rect(0, 0, dim, dim))
	for i, v := range values {
		b := v * scale
		switch {
		case b < 0:
			b = 0
		case b > 255:
			b = 255
		}
		src.Pix[i] = uint8(b)
	}

	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	out := make([]float64, len(values))
	for i, p := range dst.Pix {
		out[i] = float64(p) / scale
	}
	return out
}

func bufferIndex(x, y, dim uint64) uint64 {
	return y*dim + x
}

type blurInputVisitor struct {
	sum        []float64
	count      []uint64
	dim        uint64
	downsample uint64
	getter     func(FieldsState) float64
}

func (v *blurInputVisitor) VisitBranchPre(_ *BranchData, _ quadtree.VisitData) (bool, error) {
	return true, nil
}

func (v *blurInputVisitor) VisitLeaf(leaf *LeafData, data quadtree.VisitData) error {
	value := v.getter(leaf.Fields)

	if data.Width >= v.downsample {
		x0, y0 := data.X/v.downsample, data.Y/v.downsample
		cells := data.Width / v.downsample
		if cells == 0 {
			cells = 1
		}
		for y := y0; y < y0+cells; y++ {
			for x := x0; x < x0+cells; x++ {
				idx := bufferIndex(x, y, v.dim)
				v.sum[idx] += value
				v.count[idx]++
			}
		}
		return nil
	}

	idx := bufferIndex(data.X/v.downsample, data.Y/v.downsample, v.dim)
	v.sum[idx] += value
	v.count[idx]++
	return nil
}

func (v *blurInputVisitor) VisitBranchPost(_ *BranchData, _ quadtree.VisitData) error {
	return nil
}

type blurOutputVisitor struct {
	buffer     []float64
	dim        uint64
	downsample uint64
	setter     func(*FieldsState, float64, uint64)
}

func (v *blurOutputVisitor) VisitBranchPre(_ *BranchData, _ quadtree.VisitData) (bool, error) {
	return true, nil
}

func (v *blurOutputVisitor) VisitLeaf(leaf *LeafData, data quadtree.VisitData) error {
	cx := (data.X + data.Width/2) / v.downsample
	cy := (data.Y + data.Width/2) / v.downsample
	if cx >= v.dim {
		cx = v.dim - 1
	}
	if cy >= v.dim {
		cy = v.dim - 1
	}
	v.setter(&leaf.Fields, v.buffer[bufferIndex(cx, cy, v.dim)], data.Width)
	return nil
}

func (v *blurOutputVisitor) VisitBranchPost(_ *BranchData, _ quadtree.VisitData) error {
	return nil
}
