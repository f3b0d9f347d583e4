package id3

import (
	"fmt"
	"strings"
)

// EventType is the type of an event in an ETCO frame. Unassigned
// values are kept as-is and reported as reserved.
type EventType byte

const (
	EventPadding                EventType = 0x00
	EventEndOfInitialSilence    EventType = 0x01
	EventIntroStart             EventType = 0x02
	EventMainPartStart          EventType = 0x03
	EventOutroStart             EventType = 0x04
	EventOutroEnd               EventType = 0x05
	EventVerseStart             EventType = 0x06
	EventRefrainStart           EventType = 0x07
	EventInterludeStart         EventType = 0x08
	EventThemeStart             EventType = 0x09
	EventVariationStart         EventType = 0x0A
	EventKeyChange              EventType = 0x0B
	EventTimeChange             EventType = 0x0C
	EventMomentaryUnwantedNoise EventType = 0x0D
	EventSustainedNoise         EventType = 0x0E
	EventSustainedNoiseEnd      EventType = 0x0F
	EventIntroEnd               EventType = 0x10
	EventMainPartEnd            EventType = 0x11
	EventVerseEnd               EventType = 0x12
	EventRefrainEnd             EventType = 0x13
	EventThemeEnd               EventType = 0x14
	EventProfanity              EventType = 0x15
	EventProfanityEnd           EventType = 0x16
	EventAudioEnd               EventType = 0xFD
	EventAudioFileEnd           EventType = 0xFE
	EventOneMoreByte            EventType = 0xFF
)

var eventTypes = map[EventType]string{
	EventPadding:                "Padding",
	EventEndOfInitialSilence:    "End of initial silence",
	EventIntroStart:             "Intro start",
	EventMainPartStart:          "Main part start",
	EventOutroStart:             "Outro start",
	EventOutroEnd:               "Outro end",
	EventVerseStart:             "Verse start",
	EventRefrainStart:           "Refrain start",
	EventInterludeStart:         "Interlude start",
	EventThemeStart:             "Theme start",
	EventVariationStart:         "Variation start",
	EventKeyChange:              "Key change",
	EventTimeChange:             "Time change",
	EventMomentaryUnwantedNoise: "Momentary unwanted noise",
	EventSustainedNoise:         "Sustained noise",
	EventSustainedNoiseEnd:      "Sustained noise end",
	EventIntroEnd:               "Intro end",
	EventMainPartEnd:            "Main part end",
	EventVerseEnd:               "Verse end",
	EventRefrainEnd:             "Refrain end",
	EventThemeEnd:               "Theme end",
	EventProfanity:              "Profanity",
	EventProfanityEnd:           "Profanity end",
	EventAudioEnd:               "Audio end",
	EventAudioFileEnd:           "Audio file ends",
	EventOneMoreByte:            "One more byte of events follows",
}

func (t EventType) String() string {
	if s, ok := eventTypes[t]; ok {
		return s
	}
	if t >= 0xE0 && t <= 0xEF {
		return fmt.Sprintf("Not predefined synch %X", byte(t)&0x0F)
	}
	return "Reserved"
}

// Event is a single entry of an ETCO frame.
type Event struct {
	Type      EventType
	Timestamp uint32
}

// EventTimingCodesFrame is an ETCO frame.
type EventTimingCodesFrame struct {
	FrameHeader
	Format TimestampFormat
	Events []Event
}

func (f *EventTimingCodesFrame) Value() string {
	names := make([]string, len(f.Events))
	for i, e := range f.Events {
		names[i] = e.Type.String()
	}
	return strings.Join(names, ", ")
}

func (f *EventTimingCodesFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}

	f.Format = TimestampFormat(data[0])
	f.Events = nil

	for pos := 1; pos+5 <= len(data); pos += 5 {
		f.Events = append(f.Events, Event{
			Type:      EventType(data[pos]),
			Timestamp: beUint32(data[pos+1:]),
		})
	}

	return nil
}

func (f *EventTimingCodesFrame) encode(Version) []byte {
	out := make([]byte, 0, 1+5*len(f.Events))
	out = append(out, byte(f.Format))
	for _, e := range f.Events {
		out = append(out, byte(e.Type))
		out = append(out, intToBytes(e.Timestamp)...)
	}
	return out
}
