package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// TicksPerQuarter is the resolution of exported files
const TicksPerQuarter = 480

const (
	defaultTempo = 120
	drumChannel  = 9
	trackName    = "magda-composer"
)

// ErrNothingToExport is returned when no part has a sounding note
var ErrNothingToExport = errors.New("no notes to export")

// Meter is the time signature written into the file
type Meter struct {
	Numerator   uint8
	Denominator uint8
}

var roleChannels = map[string]uint8{
	models.RoleMelody: 0,
	models.RoleBass:   1,
	models.RolePiano:  2,
	models.RoleGuitar: 3,
	models.RoleVocal:  4,
	models.RoleDrums:  drumChannel,
}

type timedMessage struct {
	tick  uint32
	off   bool
	order int
	msg   []byte
}

// WriteSMF renders parts into a single-track Standard MIDI File. Each role
// plays on its own channel; rests are skipped.
func WriteSMF(parts []models.Part, tempo int, meter Meter) ([]byte, error) {
	if tempo <= 0 {
		tempo = defaultTempo
	}
	if meter.Numerator == 0 || meter.Denominator == 0 {
		meter = Meter{Numerator: 4, Denominator: 4}
	}

	var messages []timedMessage
	for i, part := range parts {
		channel := channelFor(part.Role, i)
		for _, ev := range part.Events {
			if ev.Rest || ev.MidiNoteNumber < 0 || ev.MidiNoteNumber > 127 {
				continue
			}
			start := beatsToTicks(ev.StartBeats)
			end := beatsToTicks(ev.EndBeats())
			if end <= start {
				end = start + 1
			}
			velocity := ev.Velocity
			if velocity <= 0 {
				velocity = models.GetDefaultVelocityForRole(part.Role)
			}
			key := uint8(ev.MidiNoteNumber)
			n := len(messages)
			messages = append(messages,
				timedMessage{tick: start, order: n, msg: midi.NoteOn(channel, key, uint8(min(127, velocity)))},
				timedMessage{tick: end, off: true, order: n + 1, msg: midi.NoteOff(channel, key)},
			)
		}
	}
	if len(messages) == 0 {
		return nil, ErrNothingToExport
	}

	// note-offs first on shared ticks so repeated pitches retrigger
	sort.SliceStable(messages, func(a, b int) bool {
		if messages[a].tick != messages[b].tick {
			return messages[a].tick < messages[b].tick
		}
		if messages[a].off != messages[b].off {
			return messages[a].off
		}
		return messages[a].order < messages[b].order
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(trackName))
	tr.Add(0, smf.MetaMeter(meter.Numerator, meter.Denominator))
	tr.Add(0, smf.MetaTempo(float64(tempo)))

	var last uint32
	for _, m := range messages {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write SMF: %w", err)
	}

	logger.Debug("Exported SMF", logger.Fields{
		"parts":    len(parts),
		"messages": len(messages),
		"tempo":    tempo,
		"bytes":    buf.Len(),
	})
	return buf.Bytes(), nil
}

func channelFor(role string, index int) uint8 {
	if ch, ok := roleChannels[role]; ok {
		return ch
	}
	ch := uint8(5 + index%4)
	return ch
}

func beatsToTicks(beats float64) uint32 {
	if beats <= 0 {
		return 0
	}
	return uint32(math.Round(beats * TicksPerQuarter))
}
