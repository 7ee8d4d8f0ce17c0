package track

import "sort"

type noteKey struct {
	patch string
	pitch float32
}

type bucket struct {
	notes []NoteEvent
	seen  map[noteKey]struct{}
}

// Aggregate groups notes landing on the same millisecond into frames and
// converts absolute times to waits. The first frame always waits 0.
// Within a frame, notes are deduplicated by patch and pitch; the first one wins.
func Aggregate(notes []NoteEvent) Track {
	if len(notes) == 0 {
		return Track{}
	}

	buckets := make(map[int64]*bucket)
	for _, n := range notes {
		b, ok := buckets[n.Millis]
		if !ok {
			b = &bucket{seen: make(map[noteKey]struct{})}
			buckets[n.Millis] = b
		}
		key := noteKey{patch: n.Patch, pitch: n.Pitch}
		if _, dup := b.seen[key]; dup {
			continue
		}
		b.seen[key] = struct{}{}
		b.notes = append(b.notes, n)
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	frames := make(Track, 0, len(keys))
	last := keys[0]
	for _, k := range keys {
		frames = append(frames, Frame{Wait: k - last, Notes: buckets[k].notes})
		last = k
	}
	return frames
}
