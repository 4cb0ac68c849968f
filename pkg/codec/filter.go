package codec

const bytesPerPixel = 4

const (
	filterNone = iota
	filterSub
	filterUp
	filterAverage
	filterPaeth
	numFilters
)

// rowFilter holds one scratch line per PNG filter type, each prefixed with
// its filter byte.
type rowFilter struct {
	lines [numFilters][]byte
}

func (f *rowFilter) init(rowLen int) {
	for i := range f.lines {
		f.lines[i] = make([]byte, rowLen+1)
		f.lines[i][0] = byte(i)
	}
}

// apply returns the filtered form of cur. With adaptive set, the filter
// with the smallest sum of absolute signed residuals wins, as libpng
// recommends; ties go to the lower filter number.
func (f *rowFilter) apply(cur, prev []byte, adaptive bool) []byte {
	copy(f.lines[filterNone][1:], cur)
	if !adaptive {
		return f.lines[filterNone]
	}

	sub := f.lines[filterSub][1:]
	up := f.lines[filterUp][1:]
	avg := f.lines[filterAverage][1:]
	paeth := f.lines[filterPaeth][1:]

	for i := range cur {
		var left, upLeft byte
		if i >= bytesPerPixel {
			left = cur[i-bytesPerPixel]
			upLeft = prev[i-bytesPerPixel]
		}
		above := prev[i]
		sub[i] = cur[i] - left
		up[i] = cur[i] - above
		avg[i] = cur[i] - byte((int(left)+int(above))/2)
		paeth[i] = cur[i] - paethPredictor(left, above, upLeft)
	}

	best, bestScore := filterNone, score(f.lines[filterNone][1:])
	for ft := filterSub; ft < numFilters; ft++ {
		if s := score(f.lines[ft][1:]); s < bestScore {
			best, bestScore = ft, s
		}
	}
	return f.lines[best]
}

func score(line []byte) int {
	sum := 0
	for _, b := range line {
		v := int(int8(b))
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}

func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
