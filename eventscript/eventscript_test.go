package eventscript_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qut-emu/avremu/eventscript"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSortsByCycleThenFileOrder(t *testing.T) {
	path := writeScript(t, "@10 S1: PRESS\n@5 S2: PRESS\n@5 S1: RELEASE\n")

	events, diags, err := eventscript.Load(path)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, events, 3)

	require.Equal(t, uint64(5), events[0].Cycle)
	require.Equal(t, "S2", events[0].TargetName)
	require.Equal(t, uint64(5), events[1].Cycle)
	require.Equal(t, "S1", events[1].TargetName)
	require.Equal(t, uint64(10), events[2].Cycle)
}

func TestLoadParsesEveryTargetKind(t *testing.T) {
	path := writeScript(t, "@0 S1: PRESS\n@1 R1: 0.75\n@2 U1: DEAD BEEF\n@3 LED0: PRESS\n")

	events, diags, err := eventscript.Load(path)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, events, 4)

	require.Equal(t, eventscript.TargetButton, events[0].TargetKind)
	require.Equal(t, eventscript.PayloadPress, events[0].Payload.Kind)

	require.Equal(t, eventscript.TargetPot, events[1].TargetKind)
	require.Equal(t, 1, events[1].TargetIndex)
	require.Equal(t, eventscript.PayloadFraction, events[1].Payload.Kind)
	require.InDelta(t, 0.75, events[1].Payload.Fraction, 1e-9)

	require.Equal(t, eventscript.TargetUSART, events[2].TargetKind)
	require.Equal(t, eventscript.PayloadBytes, events[2].Payload.Kind)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, events[2].Payload.Bytes)

	require.Equal(t, eventscript.TargetNamed, events[3].TargetKind)
}

func TestLoadReportsMalformedLinesButKeepsGoing(t *testing.T) {
	path := writeScript(t, "this is not an event\n@1 S1: PRESS\n")

	events, diags, err := eventscript.Load(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, diags, 1)
	require.Equal(t, 1, diags[0].Line)
}

func TestLoadFailsOnNonEmptyFileWithZeroValidEvents(t *testing.T) {
	path := writeScript(t, "garbage line one\ngarbage line two\n")

	_, diags, err := eventscript.Load(path)
	require.Error(t, err)
	require.Len(t, diags, 2)
}

func TestLoadOnEmptyFileSucceedsWithNoEvents(t *testing.T) {
	path := writeScript(t, "\n\n")

	events, diags, err := eventscript.Load(path)
	require.NoError(t, err)
	require.Empty(t, events)
	require.Empty(t, diags)
}

func TestEventStringRoundTrips(t *testing.T) {
	path := writeScript(t, "@42 U2: CAFE\n")
	events, _, err := eventscript.Load(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "@42 U2: CAFE", events[0].String())
}
