package id3

import (
	"strconv"
)

type compatAction int

const (
	// compatDrop removes frames that have no equivalent in the target
	// version.
	compatDrop compatAction = iota
	// compatRename changes the frame id, and optionally the text.
	compatRename
	// compatMerge replaces several frames with a single new one.
	compatMerge
	// compatSplit replaces one frame with several new ones.
	compatSplit
)

type compatRule struct {
	action compatAction
	to     string
	text   func(string) string
	merge  func(frames *FrameMap) Frame
	split  func(f Frame) []Frame
}

var (
	drop        = compatRule{action: compatDrop}
	mergeDate   = compatRule{action: compatMerge, to: "TDRC", merge: mergeRecordingTime}
	mergeCredit = compatRule{action: compatMerge, to: "IPLS", merge: mergeCredits}
)

// compatRules holds, per target version, the frames that have to change
// for a tag to be valid in that version. Frames not listed here are kept
// as they are.
var compatRules = map[Version]map[string]compatRule{
	Version24: {
		"EQUA": drop,
		"RVAD": drop,
		"TRDA": drop,
		"TSIZ": drop,
		"IPLS": {action: compatRename, to: "TIPL"},
		"TORY": {action: compatRename, to: "TDOR"},
		"XDOR": {action: compatRename, to: "TDOR"},
		"TYER": mergeDate,
		"TDAT": mergeDate,
		"TIME": mergeDate,
	},
	Version23: {
		"ASPI": drop,
		"EQU2": drop,
		"RVA2": drop,
		"SEEK": drop,
		"SIGN": drop,
		"TDEN": drop,
		"TDRL": drop,
		"TDTG": drop,
		"TMOO": drop,
		"TPRO": drop,
		"TSOA": drop,
		"TSOP": drop,
		"TSOT": drop,
		"TSST": drop,
		"TDOR": {action: compatRename, to: "TORY", text: yearOnly},
		"TIPL": mergeCredit,
		"TMCL": mergeCredit,
		"TDRC": {action: compatSplit, split: splitRecordingTime},
	},
}

// migrate transforms frames, including the frames embedded in chapters,
// to version v. Frame order is preserved; a merged frame takes the
// place of the first frame it replaces.
func migrate(frames *FrameMap, v Version) {
	rules := compatRules[v.saveVersion()]

	var (
		out    FrameMap
		merged = make(map[string]bool)
	)
	for _, f := range frames.Frames() {
		switch f := f.(type) {
		case *ChapterFrame:
			migrate(&f.Frames, v)
		case *TableOfContentsFrame:
			migrate(&f.Frames, v)
		}

		rule, ok := rules[f.ID()]
		if !ok {
			out.Add(f)
			continue
		}

		switch rule.action {
		case compatDrop:
			Logging.Warn("dropping frame without equivalent", "id", f.ID(), "version", v)
		case compatRename:
			Logging.Info("renaming frame", "id", f.ID(), "to", rule.to)
			f.header().id = rule.to
			if tf, ok := f.(*TextFrame); ok && rule.text != nil {
				for i, s := range tf.Text {
					tf.Text[i] = rule.text(s)
				}
			}
			out.Add(f)
		case compatMerge:
			if merged[rule.to] {
				continue
			}
			merged[rule.to] = true
			if m := rule.merge(frames); m != nil {
				Logging.Info("merging frames", "into", rule.to)
				out.Add(m)
			}
		case compatSplit:
			parts := rule.split(f)
			if parts == nil {
				Logging.Warn("dropping frame that can't be converted", "id", f.ID(), "value", f.Value())
			}
			for _, part := range parts {
				out.Add(part)
			}
		}
	}

	*frames = out
}

// firstText returns the first value of the first text frame with the
// given id.
func firstText(frames *FrameMap, id string) (string, Encoding) {
	for _, f := range frames.GetAll(id) {
		if tf, ok := f.(*TextFrame); ok && len(tf.Text) > 0 {
			return tf.Text[0], tf.Encoding
		}
	}
	return "", ISO88591
}

func isDigits(s string) bool {
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

// mergeRecordingTime combines TYER (YYYY), TDAT (DDMM) and TIME (HHMM)
// into a TDRC timestamp with as much precision as the parts allow.
func mergeRecordingTime(frames *FrameMap) Frame {
	year, enc := firstText(frames, "TYER")
	if len(year) < 4 || !isDigits(year[:4]) {
		Logging.Warn("dropping date frames without a valid year", "year", year)
		return nil
	}
	ts := year[:4]

	if date, _ := firstText(frames, "TDAT"); len(date) == 4 && isDigits(date) {
		ts += "-" + date[2:4] + "-" + date[0:2]

		if tm, _ := firstText(frames, "TIME"); len(tm) == 4 && isDigits(tm) {
			ts += "T" + tm[0:2] + ":" + tm[2:4]
		}
	}

	f := NewTextFrame("TDRC", ts)
	f.Encoding = enc
	return f
}

// splitRecordingTime is the inverse of mergeRecordingTime.
func splitRecordingTime(f Frame) []Frame {
	tf, ok := f.(*TextFrame)
	if !ok || len(tf.Text) == 0 {
		return nil
	}

	t, precision, err := parseTime(tf.Text[0])
	if err != nil {
		return nil
	}

	text := func(id, layout string) Frame {
		out := NewTextFrame(id, t.Format(layout))
		out.Encoding = ISO88591
		return out
	}

	out := []Frame{text("TYER", "2006")}
	if precision <= precisionDay {
		out = append(out, text("TDAT", "0201"))
	}
	if precision <= precisionHour {
		out = append(out, text("TIME", "1504"))
	}
	return out
}

// mergeCredits combines the involved people and musician credits lists
// into a single IPLS frame.
func mergeCredits(frames *FrameMap) Frame {
	out := NewCreditsFrame("IPLS")
	for _, id := range []string{"TIPL", "TMCL"} {
		for _, f := range frames.GetAll(id) {
			cf, ok := f.(*CreditsFrame)
			if !ok {
				continue
			}
			out.Encoding = cf.Encoding
			for role, people := range cf.People {
				out.People[role] = people
			}
		}
	}
	if len(out.People) == 0 {
		return nil
	}
	return out
}

func yearOnly(s string) string {
	if len(s) > 4 {
		return s[:4]
	}
	return s
}
