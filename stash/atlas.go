package stash

// atlasNode is one segment of the skyline: a horizontal run of width
// pixels starting at x whose lowest free row is y.
type atlasNode struct {
	x, y, width int
}

// Atlas implements skyline bin packing for rectangular glyph cells.
//
// The skyline is the upper envelope of everything packed so far. A new
// rectangle is placed at the position that keeps the skyline lowest,
// preferring narrower segments on ties.
type Atlas struct {
	width  int
	height int
	nodes  []atlasNode
}

// NewAtlas creates an empty atlas of the given size.
func NewAtlas(width, height int) *Atlas {
	a := &Atlas{
		width:  width,
		height: height,
		nodes:  make([]atlasNode, 1, 256),
	}
	a.nodes[0] = atlasNode{x: 0, y: 0, width: width}
	return a
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.width }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.height }

// AddRect finds space for a w x h rectangle.
// Returns ok == false if the rectangle does not fit.
func (a *Atlas) AddRect(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}

	bestH := a.height
	bestW := a.width
	bestI := -1
	bestX, bestY := -1, -1

	for i, n := range a.nodes {
		fy, fits := a.rectFits(i, w, h)
		if !fits {
			continue
		}
		if fy+h < bestH || (fy+h == bestH && n.width < bestW) {
			bestI = i
			bestW = n.width
			bestH = fy + h
			bestX = n.x
			bestY = fy
		}
	}
	if bestI == -1 {
		return 0, 0, false
	}

	a.addSkylineLevel(bestI, bestX, bestY, w, h)
	return bestX, bestY, true
}

// rectFits returns the y at which a w x h rectangle would rest if its left
// edge is placed at node i.
func (a *Atlas) rectFits(i, w, h int) (int, bool) {
	x := a.nodes[i].x
	y := a.nodes[i].y
	if x+w > a.width {
		return 0, false
	}
	spaceLeft := w
	for spaceLeft > 0 {
		if i == len(a.nodes) {
			return 0, false
		}
		y = max(y, a.nodes[i].y)
		if y+h > a.height {
			return 0, false
		}
		spaceLeft -= a.nodes[i].width
		i++
	}
	return y, true
}

func (a *Atlas) addSkylineLevel(idx, x, y, w, h int) {
	a.insertNode(idx, x, y+h, w)

	// Shrink or remove the nodes now covered by the new one.
	for i := idx + 1; i < len(a.nodes); i++ {
		prev := a.nodes[i-1]
		if a.nodes[i].x >= prev.x+prev.width {
			break
		}
		shrink := prev.x + prev.width - a.nodes[i].x
		a.nodes[i].x += shrink
		a.nodes[i].width -= shrink
		if a.nodes[i].width > 0 {
			break
		}
		a.removeNode(i)
		i--
	}

	// Merge neighbours at the same level.
	for i := 0; i < len(a.nodes)-1; i++ {
		if a.nodes[i].y == a.nodes[i+1].y {
			a.nodes[i].width += a.nodes[i+1].width
			a.removeNode(i + 1)
			i--
		}
	}
}

func (a *Atlas) insertNode(idx, x, y, w int) {
	a.nodes = append(a.nodes, atlasNode{})
	copy(a.nodes[idx+1:], a.nodes[idx:])
	a.nodes[idx] = atlasNode{x: x, y: y, width: w}
}

func (a *Atlas) removeNode(idx int) {
	a.nodes = append(a.nodes[:idx], a.nodes[idx+1:]...)
}

// Expand grows the atlas to w x h, keeping every packed rectangle in place.
// Sizes smaller than the current ones are ignored per dimension.
func (a *Atlas) Expand(w, h int) {
	if w > a.width {
		a.insertNode(len(a.nodes), a.width, 0, w-a.width)
		a.width = w
	}
	if h > a.height {
		a.height = h
	}
}

// Reset clears all rectangles and sets a new size.
func (a *Atlas) Reset(w, h int) {
	a.width = w
	a.height = h
	a.nodes = a.nodes[:1]
	a.nodes[0] = atlasNode{x: 0, y: 0, width: w}
}

// MaxY returns the highest skyline level, which bounds every packed pixel.
func (a *Atlas) MaxY() int {
	maxY := 0
	for _, n := range a.nodes {
		maxY = max(maxY, n.y)
	}
	return maxY
}
