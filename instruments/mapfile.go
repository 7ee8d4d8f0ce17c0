package instruments

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"go-midiplayer/debug"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const (
	commentMarker = "#"
	defaultMarker = "D"
)

// mapLine is one parsed "id patch volume% ranges..." line
type mapLine struct {
	id        int
	isDefault bool
	entry     Entry
	octaves   []OctaveRange
}

// LoadTable builds a table from map files. Empty paths use the built-in mapping.
func LoadTable(instrumentPath, drumPath string) (*Table, error) {
	base := DefaultTable()

	if instrumentPath != "" {
		f, err := os.Open(instrumentPath)
		if err != nil {
			return nil, fault.Wrap(err,
				ftag.With(ftag.NotFound),
				fmsg.WithDesc("open instrument map", "Unable to read the instrument map"))
		}
		defer f.Close()

		insts, def, err := ParseInstrumentMap(f)
		if err != nil {
			return nil, err
		}
		base = NewTable(insts, def, nil, nil).WithDrums(base)
	}

	if drumPath != "" {
		f, err := os.Open(drumPath)
		if err != nil {
			return nil, fault.Wrap(err,
				ftag.With(ftag.NotFound),
				fmsg.WithDesc("open drum map", "Unable to read the drum map"))
		}
		defer f.Close()

		drums, def, err := ParseDrumMap(f)
		if err != nil {
			return nil, err
		}
		base = base.WithDrums(NewTable(nil, nil, drums, def))
	}

	return base, nil
}

// ParseInstrumentMap reads instrument lines. Invalid and duplicate lines are
// skipped with a warning; a map without a default or without any program is an error.
func ParseInstrumentMap(r io.Reader) (map[int]*Instrument, *Instrument, error) {
	defaults := make(map[OctaveRange]Entry)
	programs := make(map[int]map[OctaveRange]Entry)

	err := scanLines(r, func(line string, parts []string) {
		ml, ok := parseMapLine(parts, true)
		if !ok {
			debug.Warn("instruments", "Invalid instrument mapping line: %s", line)
			return
		}

		target := defaults
		if !ml.isDefault {
			target = programs[ml.id]
		}
		if target != nil && overlapsAny(target, ml.octaves) {
			if ml.isDefault {
				debug.Warn("instruments", "Duplicate default instrument entry: %s", line)
			} else {
				debug.Warn("instruments", "Duplicate instrument entry: %s", line)
			}
			return
		}
		if target == nil {
			target = make(map[OctaveRange]Entry)
			programs[ml.id] = target
		}
		for _, o := range ml.octaves {
			target[o] = ml.entry
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if len(defaults) == 0 {
		return nil, nil, fault.New("no default instrument",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("no default instrument", "No default instrument."))
	}
	if len(programs) == 0 {
		return nil, nil, fault.New("no instruments defined",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("no instruments defined", "No instruments defined."))
	}

	out := make(map[int]*Instrument, len(programs))
	for id, defs := range programs {
		out[id] = NewInstrument(defs)
	}
	return out, NewInstrument(defaults), nil
}

// ParseDrumMap reads "key patch volume%" lines. Problems are only warnings.
func ParseDrumMap(r io.Reader) (map[int]Entry, *Entry, error) {
	drums := make(map[int]Entry)
	var def *Entry

	err := scanLines(r, func(line string, parts []string) {
		ml, ok := parseMapLine(parts, false)
		switch {
		case !ok:
			debug.Warn("instruments", "Invalid drum mapping line: %s", line)
		case ml.isDefault && def != nil:
			debug.Warn("instruments", "Duplicate default drum entry: %s", line)
		case ml.isDefault:
			e := ml.entry
			def = &e
		default:
			if _, dup := drums[ml.id]; dup {
				debug.Warn("instruments", "Duplicate drum entry: %s", line)
				return
			}
			drums[ml.id] = ml.entry
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if def == nil {
		debug.Warn("instruments", "No default drum.")
	}
	if len(drums) == 0 {
		debug.Warn("instruments", "No drums defined.")
	}
	return drums, def, nil
}

func scanLines(r io.Reader, fn func(line string, parts []string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		clean := strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
		if clean == "" || strings.HasPrefix(clean, commentMarker) {
			continue
		}
		fn(line, splitFields(clean))
	}
	if err := scanner.Err(); err != nil {
		return fault.Wrap(err, fmsg.With("read map file"))
	}
	return nil
}

// splitFields splits on whitespace and drops a trailing comment
func splitFields(line string) []string {
	var parts []string
	for _, s := range strings.Fields(line) {
		if strings.HasPrefix(s, commentMarker) {
			break
		}
		parts = append(parts, s)
	}
	return parts
}

func parseMapLine(parts []string, withOctaves bool) (mapLine, bool) {
	minParts := 3
	if withOctaves {
		minParts = 4
	}
	if len(parts) < minParts {
		return mapLine{}, false
	}

	var ml mapLine
	if id, err := strconv.Atoi(parts[0]); err == nil {
		ml.id = id
	} else if strings.EqualFold(parts[0], defaultMarker) {
		ml.isDefault = true
	} else {
		return mapLine{}, false
	}

	patch := parts[1]
	vol, ok := strings.CutSuffix(parts[2], "%")
	if !ok || patch == "" {
		return mapLine{}, false
	}
	volume, err := strconv.Atoi(vol)
	if err != nil {
		return mapLine{}, false
	}
	ml.entry = Entry{Patch: patch, VolumeScale: float32(volume) / 100.0}

	if withOctaves {
		octaves, ok := parseOctaves(parts[3:])
		if !ok {
			return mapLine{}, false
		}
		ml.octaves = octaves
	}
	return ml, true
}

func parseOctaves(parts []string) ([]OctaveRange, bool) {
	result := make([]OctaveRange, 0, len(parts))
	for _, s := range parts {
		if n, err := strconv.Atoi(s); err == nil {
			result = append(result, OctaveRange{From: n, To: n})
			continue
		}

		elements := strings.Split(s, "-")
		if len(elements) != 2 {
			return nil, false
		}
		from, err1 := strconv.Atoi(elements[0])
		to, err2 := strconv.Atoi(elements[1])
		if err1 != nil || err2 != nil {
			return nil, false
		}
		result = append(result, OctaveRange{From: from, To: to})
	}
	return result, true
}

func overlapsAny(existing map[OctaveRange]Entry, octaves []OctaveRange) bool {
	for r := range existing {
		for _, o := range octaves {
			if r.Overlaps(o) {
				return true
			}
		}
	}
	return false
}
