package edgebreaker

import (
	"github.com/cocosip/go-mesh-codec/ans"
	"github.com/cocosip/go-mesh-codec/bitio"
)

// EncodeStream writes the connectivity layout: varint num_vertices
// (decode-order mint count), varint num_faces, u8 num_attribute_data
// (always 0: attribute-seam streams are out of scope, see DESIGN.md),
// varint num_symbols, varint num_split_symbols, the topology split events
// (varint num_events, per-event unsigned deltas, then one source-edge bit
// each in a raw LSB-first bit run), and finally the CLERSH symbols reversed
// and entropy-coded through the same dispatcher every other symbol stream
// in this codec uses.
func EncodeStream(out *bitio.EncoderBuffer, version bitio.Version, res *EncodeResult) error {
	out.EncodeVarint(uint64(res.NumDecodedVertices))
	out.EncodeVarint(uint64(len(res.DecodedFaces)))
	out.EncodeU8(0) // num_attribute_data
	out.EncodeVarint(uint64(len(res.Symbols)))
	out.EncodeVarint(uint64(len(res.Events))) // num_split_symbols

	out.EncodeVarint(uint64(len(res.Events))) // num_events
	lastSource := 0
	for _, ev := range res.Events {
		out.EncodeVarint(uint64(ev.SourceSymbolID - lastSource))
		out.EncodeVarint(uint64(ev.SourceSymbolID - ev.SplitSymbolID))
		lastSource = ev.SourceSymbolID
	}
	if len(res.Events) > 0 {
		out.StartBitEncoding()
		for _, ev := range res.Events {
			bit := uint32(0)
			if ev.SourceEdge == SourceEdgeRight {
				bit = 1
			}
			out.EncodeLeastSignificantBits32(bit, 1)
		}
		out.EndBitEncoding()
	}

	symbols := make([]Symbol, len(res.Symbols))
	copy(symbols, res.Symbols)
	reverse(symbols)
	flat := make([]uint32, len(symbols))
	for i, s := range symbols {
		flat[i] = uint32(s)
	}
	return ans.EncodeSymbols(out, version, flat, 1)
}

// DecodeStream is the inverse of EncodeStream. It returns the symbols in
// traversal order (un-reversed) ready for DecodeConnectivity.
func DecodeStream(d *bitio.DecoderBuffer) (symbols []Symbol, numVertices, numFaces int, events []TopologySplitEvent, err error) {
	nv, err := d.DecodeVarint()
	if err != nil {
		return nil, 0, 0, nil, err
	}
	nf, err := d.DecodeVarint()
	if err != nil {
		return nil, 0, 0, nil, err
	}
	if _, err = d.DecodeU8(); err != nil { // num_attribute_data, unused
		return nil, 0, 0, nil, err
	}
	numSymbols, err := d.DecodeVarint()
	if err != nil {
		return nil, 0, 0, nil, err
	}
	numSplitSymbols, err := d.DecodeVarint()
	if err != nil {
		return nil, 0, 0, nil, err
	}

	numEvents, err := d.DecodeVarint()
	if err != nil {
		return nil, 0, 0, nil, err
	}
	if numEvents != numSplitSymbols {
		return nil, 0, 0, nil, ErrUnmatchedSplit
	}
	// Every event costs at least two bytes of deltas; a count beyond that is
	// a corrupt stream, not a large mesh.
	if numEvents > uint64(d.Remaining()) {
		return nil, 0, 0, nil, bitio.ErrTruncated
	}
	events = make([]TopologySplitEvent, numEvents)
	lastSource := uint64(0)
	for i := range events {
		dSource, err := d.DecodeVarint()
		if err != nil {
			return nil, 0, 0, nil, err
		}
		lastSource += dSource
		dSplit, err := d.DecodeVarint()
		if err != nil {
			return nil, 0, 0, nil, err
		}
		if dSplit > lastSource {
			return nil, 0, 0, nil, ErrUnmatchedSplit
		}
		events[i] = TopologySplitEvent{
			SourceSymbolID: int(lastSource),
			SplitSymbolID:  int(lastSource - dSplit),
		}
	}
	if numEvents > 0 {
		if err := d.StartBitDecoding(false); err != nil {
			return nil, 0, 0, nil, err
		}
		for i := range events {
			bit, err := d.DecodeLeastSignificantBits32(1)
			if err != nil {
				return nil, 0, 0, nil, err
			}
			if bit == 1 {
				events[i].SourceEdge = SourceEdgeRight
			}
		}
		if err := d.EndBitDecoding(); err != nil {
			return nil, 0, 0, nil, err
		}
	}

	flat, err := ans.DecodeSymbols(d, int(numSymbols))
	if err != nil {
		return nil, 0, 0, nil, err
	}
	symbols = make([]Symbol, len(flat))
	for i, v := range flat {
		symbols[i] = Symbol(v)
	}
	reverse(symbols)
	return symbols, int(nv), int(nf), events, nil
}

func reverse(s []Symbol) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
