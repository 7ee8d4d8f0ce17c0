package theme

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-midiplayer/debug"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is used when no palette file is configured
func DefaultPalette() *Palette {
	return &Palette{
		Name: "dusk",
		Colors: []RGB{
			{26, 16, 46},   // deep purple
			{48, 26, 74},   // dark purple
			{96, 48, 120},  // purple-magenta
			{150, 80, 160}, // pink-purple
			{200, 110, 190},
			{230, 70, 170}, // magenta
			{245, 120, 140},
			{250, 110, 90}, // soft red
			{255, 160, 60}, // orange
			{255, 210, 80},
			{255, 240, 120}, // yellow
		},
	}
}

// Load reads a GIMP palette, falling back to the default palette when path
// is empty or unreadable
func Load(path string) *Palette {
	if path == "" {
		return DefaultPalette()
	}
	p, err := LoadGPL(path)
	if err != nil {
		debug.Warn("theme", "palette %s: %v", path, err)
		return DefaultPalette()
	}
	return p
}

// LoadGPL reads a GIMP .gpl palette
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.NotFound), fmsg.With("open palette"))
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("read palette"))
	}

	if len(p.Colors) == 0 {
		return nil, fault.New("no colors found in palette "+path, ftag.With(ftag.InvalidArgument))
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
