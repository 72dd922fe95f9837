package ans

import "math"

// ShannonEntropyTracker incrementally tracks a symbol frequency histogram
// and exposes running Shannon-entropy-based size estimates, used by the
// TAGGED-vs-RAW dispatcher to pick the cheaper scheme without fully
// encoding both.
type ShannonEntropyTracker struct {
	counts map[uint32]int
	total  int
}

// NewShannonEntropyTracker returns an empty tracker.
func NewShannonEntropyTracker() *ShannonEntropyTracker {
	return &ShannonEntropyTracker{counts: make(map[uint32]int)}
}

// Push folds one more observed symbol into the histogram.
func (t *ShannonEntropyTracker) Push(symbol uint32) {
	t.counts[symbol]++
	t.total++
}

// Peek returns the current estimated data-bits and table-bits cost without
// mutating the tracker.
func (t *ShannonEntropyTracker) Peek() (dataBits, tableBits float64) {
	return t.GetNumberOfDataBits(), t.GetNumberOfRAnsTableBits()
}

// GetNumberOfDataBits returns total * per-symbol Shannon entropy.
func (t *ShannonEntropyTracker) GetNumberOfDataBits() float64 {
	if t.total == 0 {
		return 0
	}
	freqs := make([]int, 0, len(t.counts))
	for _, c := range t.counts {
		freqs = append(freqs, c)
	}
	return ComputeShannonEntropy(freqs, t.total)
}

// GetNumberOfRAnsTableBits approximates the serialized rANS frequency
// table size for the symbols observed so far.
func (t *ShannonEntropyTracker) GetNumberOfRAnsTableBits() float64 {
	return ApproximateRansFrequencyTableBits(len(t.counts))
}

// NumUniqueSymbols returns the number of distinct symbols observed.
func (t *ShannonEntropyTracker) NumUniqueSymbols() int { return len(t.counts) }

// ComputeShannonEntropy returns the total number of bits (not bits/symbol)
// needed to code `total` draws from the given frequency histogram under an
// ideal entropy coder.
func ComputeShannonEntropy(freqs []int, total int) float64 {
	if total == 0 {
		return 0
	}
	var bits float64
	ft := float64(total)
	for _, f := range freqs {
		if f == 0 {
			continue
		}
		p := float64(f) / ft
		bits -= float64(f) * math.Log2(p)
	}
	return bits
}

// ComputeBinaryShannonEntropy returns the total number of bits needed to
// code `total` bits drawn from a binary source with P(bit==0)=p0.
func ComputeBinaryShannonEntropy(p0 float64, total int) float64 {
	if total == 0 || p0 <= 0 || p0 >= 1 {
		return 0
	}
	p1 := 1 - p0
	perSymbol := -p0*math.Log2(p0) - p1*math.Log2(p1)
	return perSymbol * float64(total)
}

// ApproximateRansFrequencyTableBits approximates the serialized size of an
// rANS frequency table with numSymbols distinct entries: a varint symbol
// count plus roughly one byte per symbol's mode-tagged probability entry,
// biased slightly upward to keep the dispatcher conservative about table
// overhead for small alphabets.
func ApproximateRansFrequencyTableBits(numSymbols int) float64 {
	if numSymbols <= 0 {
		return 8
	}
	countBits := 8.0
	if numSymbols >= 128 {
		countBits = 16
	}
	return countBits + float64(numSymbols)*10
}
