package compliance

import "math"

// Blob filter bounds. Faces are roughly oval, sit near the center and
// occupy a sane fraction of an ID photo.
const (
	blobMinAspect      = 0.6
	blobMaxAspect      = 1.4
	blobMinAreaRatio   = 0.05
	blobMaxAreaRatio   = 0.8
	blobMaxCenterDrift = 0.3

	// Candidate scoring weights.
	scoreWeightSize     = 0.4
	scoreWeightCenter   = 0.3
	scoreWeightSymmetry = 0.3

	fallbackConfidence = 0.2
)

// skinBlob is one connected component of the sampled skin mask. Bounds
// are in image coordinates.
type skinBlob struct {
	x0, y0, x1, y1 int
	pixels         int
}

func (b skinBlob) width() int  { return b.x1 - b.x0 }
func (b skinBlob) height() int { return b.y1 - b.y0 }

// estimateFaceRegion finds the most face-like skin region near the image
// center. It always returns a region: when nothing survives the filters
// it falls back to a centered default box with low confidence.
func estimateFaceRegion(bm *bitmap, t Thresholds) FaceRegion {
	stride := t.SampleStride
	if stride < 1 {
		stride = 1
	}
	gw := bm.width / stride
	gh := bm.height / stride
	if gw < 2 || gh < 2 {
		return centerFallback(bm, 0)
	}

	mask := make([]bool, gw*gh)
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			r, g, bl := bm.rgbAt(gx*stride, gy*stride)
			mask[gy*gw+gx] = isSkinTone(r, g, bl)
		}
	}

	blobs := findBlobs(mask, gw, gh, stride)

	var best *skinBlob
	bestScore := 0.0
	for i := range blobs {
		blob := &blobs[i]
		if !blobPassesFilters(blob, bm) {
			continue
		}
		score := scoreBlob(blob, bm, t)
		// Strict comparison keeps scan order stable on ties.
		if best == nil || score > bestScore {
			best = blob
			bestScore = score
		}
	}

	if best == nil {
		return centerFallback(bm, fallbackConfidence)
	}

	return FaceRegion{
		X:          best.x0,
		Y:          best.y0,
		Width:      best.width(),
		Height:     best.height(),
		AreaRatio:  float64(best.width()*best.height()) / float64(bm.width*bm.height),
		Confidence: clamp01(bestScore),
	}
}

// findBlobs runs a 4-neighbor flood fill over the sampled mask and
// returns components in scan order, with bounds scaled back to image
// coordinates.
func findBlobs(mask []bool, gw, gh, stride int) []skinBlob {
	visited := make([]bool, len(mask))
	var blobs []skinBlob
	queue := make([]int, 0, len(mask)/4)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		blob := skinBlob{x0: gw, y0: gh, x1: 0, y1: 0}
		queue = queue[:0]
		queue = append(queue, start)
		visited[start] = true

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			gx, gy := idx%gw, idx/gw

			blob.pixels++
			if gx < blob.x0 {
				blob.x0 = gx
			}
			if gy < blob.y0 {
				blob.y0 = gy
			}
			if gx+1 > blob.x1 {
				blob.x1 = gx + 1
			}
			if gy+1 > blob.y1 {
				blob.y1 = gy + 1
			}

			for _, next := range [4]int{idx - gw, idx + gw, idx - 1, idx + 1} {
				if next < 0 || next >= len(mask) {
					continue
				}
				// Reject horizontal wrap-around.
				if (next == idx-1 && gx == 0) || (next == idx+1 && gx == gw-1) {
					continue
				}
				if mask[next] && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}

		blob.x0 *= stride
		blob.y0 *= stride
		blob.x1 *= stride
		blob.y1 *= stride
		blob.pixels *= stride * stride
		blobs = append(blobs, blob)
	}
	return blobs
}

func blobPassesFilters(blob *skinBlob, bm *bitmap) bool {
	w, h := blob.width(), blob.height()
	if w <= 0 || h <= 0 {
		return false
	}

	aspect := float64(w) / float64(h)
	if aspect < blobMinAspect || aspect > blobMaxAspect {
		return false
	}

	areaRatio := float64(w*h) / float64(bm.width*bm.height)
	if areaRatio < blobMinAreaRatio || areaRatio > blobMaxAreaRatio {
		return false
	}

	cx := float64(blob.x0) + float64(w)/2
	cy := float64(blob.y0) + float64(h)/2
	dx := cx - float64(bm.width)/2
	dy := cy - float64(bm.height)/2
	drift := math.Sqrt(dx*dx + dy*dy)
	return drift <= blobMaxCenterDrift*float64(bm.width)
}

// scoreBlob rates a candidate by size closeness to the optimal face
// ratio, centering, and left-right symmetry.
func scoreBlob(blob *skinBlob, bm *bitmap, t Thresholds) float64 {
	w, h := blob.width(), blob.height()

	areaRatio := float64(w*h) / float64(bm.width*bm.height)
	sizeScore := clamp01(1 - math.Abs(areaRatio-t.FaceOptimalRatio)/t.FaceOptimalRatio)

	cx := float64(blob.x0) + float64(w)/2
	cy := float64(blob.y0) + float64(h)/2
	dx := cx - float64(bm.width)/2
	dy := cy - float64(bm.height)/2
	drift := math.Sqrt(dx*dx + dy*dy)
	centerScore := clamp01(1 - drift/(blobMaxCenterDrift*float64(bm.width)))

	symScore := symmetryScore(blob, bm, t.SampleStride)

	return scoreWeightSize*sizeScore + scoreWeightCenter*centerScore + scoreWeightSymmetry*symScore
}

// symmetryScore compares luma of pixels mirrored around the vertical
// center line of the bounding box.
func symmetryScore(blob *skinBlob, bm *bitmap, stride int) float64 {
	if stride < 1 {
		stride = 1
	}
	halfWidth := blob.width() / 2
	if halfWidth < stride {
		return 0
	}

	var totalDiff float64
	var count int
	for y := blob.y0; y < blob.y1; y += stride {
		for dx := 0; dx < halfWidth; dx += stride {
			left := bm.lumaAt(blob.x0+dx, y)
			right := bm.lumaAt(blob.x1-1-dx, y)
			totalDiff += math.Abs(left - right)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return clamp01(1 - (totalDiff/float64(count))/128.0)
}

// centerFallback returns the default centered estimate used when no
// candidate survives. Downstream always expects a region.
func centerFallback(bm *bitmap, confidence float64) FaceRegion {
	w := bm.width / 2
	h := (bm.height * 3) / 5
	x := (bm.width - w) / 2
	y := (bm.height - h) / 2
	areaRatio := 0.0
	if bm.width > 0 && bm.height > 0 {
		areaRatio = float64(w*h) / float64(bm.width*bm.height)
	}
	return FaceRegion{
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
		AreaRatio:  areaRatio,
		Confidence: confidence,
	}
}
