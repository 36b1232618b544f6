package registers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qut-emu/avremu/hardware/cpu/registers"
)

func TestStatusRegisterValueRoundTrips(t *testing.T) {
	var sr registers.StatusRegister
	sr.Load(0xA5) // 1010 0101: I . H . . N . C
	require.True(t, sr.I)
	require.False(t, sr.T)
	require.True(t, sr.H)
	require.False(t, sr.S)
	require.False(t, sr.V)
	require.True(t, sr.N)
	require.False(t, sr.Z)
	require.True(t, sr.C)
	require.Equal(t, uint8(0xA5), sr.Value())
}

func TestStatusRegisterSetNZ(t *testing.T) {
	var sr registers.StatusRegister
	sr.SetNZ(0x80)
	require.True(t, sr.N)
	require.False(t, sr.Z)

	sr.SetNZ(0x00)
	require.False(t, sr.N)
	require.True(t, sr.Z)
}

func TestStackPointerPushPopGrowsDownward(t *testing.T) {
	sp := registers.NewStackPointer(0x3FFF)
	addr := sp.PushByte()
	require.Equal(t, uint16(0x3FFF), addr)
	require.Equal(t, uint16(0x3FFE), sp.Value())

	back := sp.PopByte()
	require.Equal(t, uint16(0x3FFF), back)
	require.Equal(t, uint16(0x3FFF), sp.Value())
}

func TestFileXYZPairs(t *testing.T) {
	f := registers.NewFile()
	f.SetX(0x1234)
	require.Equal(t, uint16(0x1234), f.X())
	require.Equal(t, uint8(0x34), f.R[26])
	require.Equal(t, uint8(0x12), f.R[27])
}

func TestProgramCounterInc(t *testing.T) {
	pc := registers.NewProgramCounter(10)
	pc.Inc(2)
	require.Equal(t, uint16(12), pc.Value())
}
