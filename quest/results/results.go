// Package results encodes raw shot outcomes into packed, width-tagged records.
//
// Logical bit 0 of the classical register is the most significant bit of the first
// byte of a packed shot. Every shot of a record has ceil(width/8) bytes and the bits
// past width are zero.
package results

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/bits-and-blooms/bitset"

	"github.com/fillay12321/qsim/quest/serial"
)

// BackendResult is the outcome of running one circuit. The register lists are copied
// from the circuit so consumers can map packed positions back to bit labels.
type BackendResult struct {
	Qubits []serial.ElementId `json:"qubits"`
	Bits   []serial.ElementId `json:"bits"`
	Shots  OutcomeArray       `json:"shots"`
}

// OutcomeArray holds packed shots of Width bits each.
type OutcomeArray struct {
	Width int      `json:"width"`
	Array [][]byte `json:"array"`
}

type outcomeJSON struct {
	Width int        `json:"width"`
	Array [][]uint16 `json:"array"`
}

// MarshalJSON keeps the byte rows as lists of numbers rather than base64 strings.
func (o OutcomeArray) MarshalJSON() ([]byte, error) {
	rows := make([][]uint16, len(o.Array))
	for i, shot := range o.Array {
		row := make([]uint16, len(shot))
		for j, b := range shot {
			row[j] = uint16(b)
		}
		rows[i] = row
	}
	return json.Marshal(outcomeJSON{Width: o.Width, Array: rows})
}

// UnmarshalJSON reads the numeric byte rows written by MarshalJSON.
func (o *OutcomeArray) UnmarshalJSON(data []byte) error {
	var dec outcomeJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	o.Width = dec.Width
	o.Array = make([][]byte, len(dec.Array))
	for i, row := range dec.Array {
		shot := make([]byte, len(row))
		for j, v := range row {
			if v > 0xff {
				return fmt.Errorf("shot %d byte %d out of range: %d", i, j, v)
			}
			shot[j] = byte(v)
		}
		o.Array[i] = shot
	}
	return nil
}

// ByteWidth is the number of bytes one shot of width bits occupies.
func ByteWidth(width int) int {
	return (width + 7) / 8
}

// Bits unpacks shot i back into Width bit values.
func (o *OutcomeArray) Bits(i int) []uint8 {
	shot := o.Array[i]
	out := make([]uint8, o.Width)
	for k := range out {
		if k/8 < len(shot) && shot[k/8]&(0x80>>(k%8)) != 0 {
			out[k] = 1
		}
	}
	return out
}

// Counts returns how often each distinct packed shot occurs, keyed by its hex form.
func (o *OutcomeArray) Counts() map[string]int {
	counts := make(map[string]int)
	for _, shot := range o.Array {
		counts[hex.EncodeToString(shot)]++
	}
	return counts
}

// pack writes the first n bits of bs most-significant-bit first. Reversing a word puts
// its bit 0 on top, so the big-endian bytes of the reversed words are the packed form.
// Bits of bs at or above n must be clear.
func pack(bs *bitset.BitSet, n int) []byte {
	words := bs.Bytes()
	out := make([]byte, 8*len(words))
	for k, w := range words {
		binary.BigEndian.PutUint64(out[8*k:], bits.Reverse64(w))
	}
	return out[:ByteWidth(n)]
}

// ConvertShot packs one classical register. Word i contributes its lowest bit as
// logical bit i.
func ConvertShot(shot []uint64) []byte {
	bs := bitset.New(uint(len(shot)))
	for i, word := range shot {
		if word&1 == 1 {
			bs.Set(uint(i))
		}
	}
	return pack(bs, len(shot))
}

// ConvertShots packs the registers of a per-shot run. The width is taken from the
// first shot; all shots come from the same circuit and have the same length.
func ConvertShots(shots [][]uint64) OutcomeArray {
	width := 0
	if len(shots) > 0 {
		width = len(shots[0])
	}
	array := make([][]byte, len(shots))
	for i, shot := range shots {
		array[i] = ConvertShot(shot)
	}
	return OutcomeArray{Width: width, Array: array}
}

// ConvertSample packs the 64 bits of a sampled basis state least significant bit
// first and keeps the first trunc bytes. Bytes past the eighth are zero.
func ConvertSample(trunc int, sample uint64) []byte {
	packed := pack(bitset.From([]uint64{sample}), 64)
	out := make([]byte, trunc)
	copy(out, packed)
	return out
}

// ConvertSamples packs the basis states drawn by a bulk-sampling run into width-bit
// shots. Bits of a sample at or above width are dropped.
func ConvertSamples(width int, samples []uint64) OutcomeArray {
	trunc := ByteWidth(width)
	var mask uint64 = ^uint64(0)
	if width < 64 {
		mask = 1<<uint(width) - 1
	}
	array := make([][]byte, len(samples))
	for i, sample := range samples {
		array[i] = ConvertSample(trunc, sample&mask)
	}
	return OutcomeArray{Width: width, Array: array}
}
