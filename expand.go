package fons

// ExpandCoverage converts a single-channel coverage buffer into an RGBA
// buffer: every pixel becomes white with the coverage as alpha.
// No gamma correction or premultiplication is applied.
//
// The result reuses dst's backing array when it is large enough and is
// always exactly 4*len(coverage) bytes long.
func ExpandCoverage(dst, coverage []byte) []byte {
	n := 4 * len(coverage)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for i, c := range coverage {
		o := dst[4*i : 4*i+4 : 4*i+4]
		o[0] = 0xff
		o[1] = 0xff
		o[2] = 0xff
		o[3] = c
	}
	return dst
}
