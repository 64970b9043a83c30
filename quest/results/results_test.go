package results

import (
	"encoding/json"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillay12321/qsim/quest/serial"
)

func TestConvertShot(t *testing.T) {
	tests := []struct {
		in   []uint64
		want []byte
	}{
		{[]uint64{1, 0, 0, 0, 0, 0, 0, 0}, []byte{128}},
		{[]uint64{1, 1, 0, 0, 0, 0, 0, 0}, []byte{192}},
		{[]uint64{0, 0, 0, 0, 0, 0, 0, 1, 1}, []byte{1, 128}},
		{[]uint64{1, 1}, []byte{192}},
		{[]uint64{3, 2}, []byte{128}}, // only the lowest bit of a word counts
		{[]uint64{}, []byte{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertShot(tt.in), "%v", tt.in)
	}

	// Registers longer than one word.
	wide := make([]uint64, 70)
	wide[0], wide[64], wide[69] = 1, 1, 1
	assert.Equal(t, []byte{128, 0, 0, 0, 0, 0, 0, 0, 132}, ConvertShot(wide))
}

func TestConvertSample(t *testing.T) {
	tests := []struct {
		trunc  int
		sample uint64
		want   []byte
	}{
		{1, 0, []byte{0}},
		{1, 1, []byte{128}},
		{2, 512, []byte{0, 64}},
		{1, 0xff00, []byte{0}},
		{8, 1 << 63, []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{9, 1, []byte{128, 0, 0, 0, 0, 0, 0, 0, 0}},
		{0, 7, []byte{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertSample(tt.trunc, tt.sample), "(%d, %d)", tt.trunc, tt.sample)
	}
}

func TestConvertShots(t *testing.T) {
	out := ConvertShots([][]uint64{{1, 0, 1}, {0, 1, 1}})
	assert.Equal(t, 3, out.Width)
	assert.Equal(t, [][]byte{{160}, {96}}, out.Array)

	empty := ConvertShots(nil)
	assert.Zero(t, empty.Width)
	assert.NotNil(t, empty.Array)
	assert.Empty(t, empty.Array)
}

func TestConvertSamplesMasksPadding(t *testing.T) {
	out := ConvertSamples(3, []uint64{0, 1, 0xff, 5})
	assert.Equal(t, 3, out.Width)
	assert.Equal(t, [][]byte{{0}, {128}, {224}, {160}}, out.Array)

	out = ConvertSamples(9, []uint64{0x1ff, 0x300})
	assert.Equal(t, [][]byte{{255, 128}, {0, 128}}, out.Array)

	out = ConvertSamples(64, []uint64{^uint64(0)})
	assert.Equal(t, [][]byte{{255, 255, 255, 255, 255, 255, 255, 255}}, out.Array)
}

// Packing then unpacking returns the original bits and leaves padding zero.
func TestPackRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 40)
	for i := 0; i < 200; i++ {
		var raw []bool
		f.Fuzz(&raw)
		words := make([]uint64, len(raw))
		for k, b := range raw {
			if b {
				words[k] = 1
			}
		}
		out := ConvertShots([][]uint64{words})
		require.Len(t, out.Array[0], ByteWidth(len(words)))
		bits := out.Bits(0)
		for k := range words {
			assert.Equal(t, uint8(words[k]), bits[k])
		}
		if pad := len(words) % 8; pad != 0 {
			last := out.Array[0][len(out.Array[0])-1]
			assert.Zero(t, last&(0xff>>pad), "padding of %v", raw)
		}
	}
}

func TestSampleRoundTrip(t *testing.T) {
	f := fuzz.New()
	for i := 0; i < 200; i++ {
		var sample uint64
		var width uint8
		f.Fuzz(&sample)
		f.Fuzz(&width)
		w := int(width%64) + 1
		out := ConvertSamples(w, []uint64{sample})
		bits := out.Bits(0)
		for k := 0; k < w; k++ {
			assert.Equal(t, uint8(sample>>k&1), bits[k])
		}
	}
}

func TestOutcomeArrayJSON(t *testing.T) {
	res := BackendResult{
		Qubits: []serial.ElementId{serial.NewElement("q", 0), serial.NewElement("q", 1)},
		Bits:   []serial.ElementId{serial.NewElement("c", 0), serial.NewElement("c", 1)},
		Shots:  OutcomeArray{Width: 2, Array: [][]byte{{0}, {192}}},
	}
	enc, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"qubits":[["q",[0]],["q",[1]]],"bits":[["c",[0]],["c",[1]]],"shots":{"width":2,"array":[[0],[192]]}}`, string(enc))

	var dec BackendResult
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, res, dec)

	var bad OutcomeArray
	assert.Error(t, json.Unmarshal([]byte(`{"width":8,"array":[[256]]}`), &bad))
}

func TestCounts(t *testing.T) {
	out := OutcomeArray{Width: 2, Array: [][]byte{{0}, {192}, {0}}}
	assert.Equal(t, map[string]int{"00": 2, "c0": 1}, out.Counts())
}
