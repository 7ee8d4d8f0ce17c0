package instruments

// DefaultPatch is the fallback melodic patch
const DefaultPatch = "note.harp"

// drumSlot maps a General MIDI percussion key to a patch
type drumSlot struct {
	Key   int
	Patch string
}

// gmKit is the built-in percussion mapping
var gmKit = []drumSlot{
	{35, "note.bd"},    // Acoustic Kick
	{36, "note.bd"},    // Kick
	{37, "note.hat"},   // Rimshot
	{38, "note.snare"}, // Snare
	{39, "note.snare"}, // Clap
	{40, "note.snare"}, // Electric Snare
	{41, "note.bd"},    // Low Tom
	{42, "note.hat"},   // Closed HH
	{43, "note.bd"},    // Mid Tom
	{44, "note.hat"},   // Pedal HH
	{45, "note.bd"},    // High Tom
	{46, "note.hat"},   // Open HH
	{49, "note.snare"}, // Crash
	{51, "note.hat"},   // Ride
	{56, "note.hat"},   // Cowbell
	{63, "note.bd"},    // High Conga
	{64, "note.bd"},    // Low Conga
	{70, "note.hat"},   // Maracas
	{75, "note.hat"},   // Clave
}

// DefaultTable returns the built-in mapping: harp across all octaves plus the GM kit
func DefaultTable() *Table {
	harp := Entry{Patch: DefaultPatch, VolumeScale: 1.0}
	octaves := make(map[OctaveRange]Entry)
	for i := 0; i < 11; i += 2 {
		octaves[OctaveRange{From: i, To: i + 1}] = harp
	}

	drums := make(map[int]Entry, len(gmKit))
	for _, slot := range gmKit {
		drums[slot.Key] = Entry{Patch: slot.Patch, VolumeScale: 1.0}
	}

	return NewTable(nil, NewInstrument(octaves), drums, nil)
}
