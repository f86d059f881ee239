package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"waypoint_router/pkg/geo"
	"waypoint_router/pkg/travel"
	"waypoint_router/pkg/world"
)

const (
	magicBytes     = "WAYPOINT"
	version        = uint32(1)
	maxNodes       = 10_000_000
	maxEdges       = 200_000_000
	maxStringBytes = 1 << 30
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	NumNodes    uint32
	NumEdges    uint32
	StringBytes uint32 // size of the concatenated node label blob
}

// WriteBinary serializes a waypoint graph to a binary file. Travel times are
// not stored; decorate the graph again after loading.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	// Flatten the node arena into parallel arrays plus a label blob.
	n := len(g.Nodes)
	kinds := make([]byte, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	pops := make([]int64, n)
	labelOff := make([]uint32, n+1)
	var labels []byte
	for i := range g.Nodes {
		node := &g.Nodes[i]
		kinds[i] = byte(node.Kind)
		lats[i] = node.Point.Lat
		lons[i] = node.Point.Lon
		pops[i] = -1
		if node.HasPopulation {
			pops[i] = node.Population
		}
		label := node.Name
		if node.Kind == world.KindRiverPoint {
			label = node.River
		}
		labelOff[i] = uint32(len(labels))
		labels = append(labels, label...)
	}
	labelOff[n] = uint32(len(labels))

	modes := make([]byte, len(g.Mode))
	for i, m := range g.Mode {
		modes[i] = byte(m)
	}

	hdr := fileHeader{
		Version:     version,
		NumNodes:    g.NumNodes,
		NumEdges:    g.NumEdges,
		StringBytes: uint32(len(labels)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Node data.
	if _, err := w.Write(kinds); err != nil {
		return fmt.Errorf("write NodeKind: %w", err)
	}
	if err := writeFloat64Slice(w, lats); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, lons); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeInt64Slice(w, pops); err != nil {
		return fmt.Errorf("write Population: %w", err)
	}
	if err := writeUint32Slice(w, labelOff); err != nil {
		return fmt.Errorf("write LabelOffset: %w", err)
	}
	if _, err := w.Write(labels); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}

	// Edges.
	if err := writeUint32Slice(w, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, g.Head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeFloat64Slice(w, g.Distance); err != nil {
		return fmt.Errorf("write Distance: %w", err)
	}
	if _, err := w.Write(modes); err != nil {
		return fmt.Errorf("write Mode: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a waypoint graph written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}
	if hdr.StringBytes > maxStringBytes {
		return nil, fmt.Errorf("label blob %d bytes exceeds limit %d", hdr.StringBytes, maxStringBytes)
	}

	n := int(hdr.NumNodes)

	// Node data.
	kinds, err := readBytes(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeKind: %w", err)
	}
	lats, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	lons, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	pops, err := readInt64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read Population: %w", err)
	}
	labelOff, err := readUint32Slice(r, n+1)
	if err != nil {
		return nil, fmt.Errorf("read LabelOffset: %w", err)
	}
	labels, err := readBytes(r, int(hdr.StringBytes))
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}

	// Edges.
	if g.FirstOut, err = readUint32Slice(r, n+1); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Head, err = readUint32Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.Distance, err = readFloat64Slice(r, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Distance: %w", err)
	}
	modes, err := readBytes(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read Mode: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	// Validate CSR invariants.
	if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("CSR invalid: %w", err)
	}
	if err := validateOffsets(labelOff, hdr.StringBytes); err != nil {
		return nil, fmt.Errorf("label offsets invalid: %w", err)
	}

	g.Mode = make([]travel.Mode, len(modes))
	for i, m := range modes {
		g.Mode[i] = travel.Mode(m)
		if !g.Mode[i].Valid() {
			return nil, fmt.Errorf("edge %d: %w: %d", i, travel.ErrUnknownTravelMode, m)
		}
	}

	g.Nodes = make([]world.Waypoint, n)
	for i := range g.Nodes {
		label := string(labels[labelOff[i]:labelOff[i+1]])
		node := world.Waypoint{Kind: world.Kind(kinds[i]), Point: geo.NewPoint(lats[i], lons[i])}
		switch node.Kind {
		case world.KindCity:
			node.Name = label
			node.Population = max(pops[i], 0)
			node.HasPopulation = pops[i] >= 0
		case world.KindRiverPoint:
			node.River = label
		default:
			return nil, fmt.Errorf("node %d has unknown kind %d", i, kinds[i])
		}
		g.Nodes[i] = node
	}

	g.finalize()
	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0] = %d, want 0", firstOut[0])
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// validateOffsets checks that label offsets are monotonic and within the blob.
func validateOffsets(off []uint32, size uint32) error {
	if len(off) == 0 || off[0] != 0 || off[len(off)-1] != size {
		return fmt.Errorf("offsets do not span the %d byte blob", size)
	}
	for i := 1; i < len(off); i++ {
		if off[i] < off[i-1] {
			return fmt.Errorf("offset not monotonic at %d: %d < %d", i, off[i], off[i-1])
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt64Slice(w io.Writer, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt64Slice(r io.Reader, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
