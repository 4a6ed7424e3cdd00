// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package rope implements ByteRope: an ordered list of owned byte
// fragments plus a logical read cursor. It lets a push-fed parser hold
// bytes delivered across many partial writes without copying them into
// one contiguous buffer on every call, and lets it hand back the bytes
// it never consumed when a message completes mid-fragment.
//
// The design traces to the offset-pair style intuitivelabs/httpsp uses
// for PField (an offset/length pair into a single buffer) generalized
// to a buffer that can grow by appending new fragments instead of by
// reallocating one slice, the way the Rust original's FragmentedBytes
// does for its own push-fed reader.
package rope

// Rope is an ordered sequence of byte fragments with a logical read
// cursor. The zero value is an empty Rope ready to use.
type Rope struct {
	frags      [][]byte
	fragStart  []int
	totalLen   int
	readPos    int
}

// Push appends b to the rope. b is retained, not copied; callers that
// reuse their buffer across Push calls must pass a copy.
func (r *Rope) Push(b []byte) {
	if len(b) == 0 {
		return
	}
	r.fragStart = append(r.fragStart, r.totalLen)
	r.frags = append(r.frags, b)
	r.totalLen += len(b)
}

// TotalLen returns the total number of bytes ever pushed, minus
// whatever Prune has discarded.
func (r *Rope) TotalLen() int { return r.totalLen }

// ReadPos returns the logical position of the read cursor.
func (r *Rope) ReadPos() int { return r.readPos }

// Unread returns the number of bytes between the read cursor and the
// end of the rope.
func (r *Rope) Unread() int { return r.totalLen - r.readPos }

// locate returns the fragment index and in-fragment offset for the
// logical position pos, which must satisfy 0 <= pos < r.totalLen.
func (r *Rope) locate(pos int) (int, int) {
	for i := len(r.frags) - 1; i >= 0; i-- {
		if pos >= r.fragStart[i] {
			return i, pos - r.fragStart[i]
		}
	}
	return 0, 0
}

// PeekAt returns the byte at offset bytes past the read cursor without
// consuming it. ok is false if that position is past the end of the
// bytes pushed so far.
func (r *Rope) PeekAt(offset int) (byte, bool) {
	pos := r.readPos + offset
	if offset < 0 || pos >= r.totalLen {
		return 0, false
	}
	idx, off := r.locate(pos)
	return r.frags[idx][off], true
}

// Advance moves the read cursor forward by n bytes. It panics if n is
// negative or would move the cursor past the end of the rope; callers
// are expected to have already confirmed n bytes are available (via
// CopyRange or PeekAt) before calling Advance.
func (r *Rope) Advance(n int) {
	if n < 0 || r.readPos+n > r.totalLen {
		panic("rope: Advance out of range")
	}
	r.readPos += n
}

// CopyRange returns a freshly allocated copy of the n bytes starting
// at the read cursor, without moving the cursor. ok is false if fewer
// than n bytes are available.
func (r *Rope) CopyRange(n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	if r.totalLen-r.readPos < n {
		return nil, false
	}
	if n == 0 {
		return []byte{}, true
	}
	out := make([]byte, n)
	pos := r.readPos
	copied := 0
	idx, off := r.locate(pos)
	for copied < n {
		frag := r.frags[idx]
		avail := len(frag) - off
		want := n - copied
		if want < avail {
			avail = want
		}
		copy(out[copied:], frag[off:off+avail])
		copied += avail
		idx++
		off = 0
	}
	return out, true
}

// Bytes returns a freshly allocated copy of every unread byte, without
// moving the cursor.
func (r *Rope) Bytes() []byte {
	b, _ := r.CopyRange(r.Unread())
	return b
}

// Prune discards fragments (or fragment prefixes) entirely before the
// read cursor and resets the cursor to 0 relative to what remains. It
// is called at phase boundaries so later phases do not pay to walk
// bytes an earlier phase already consumed.
func (r *Rope) Prune() {
	if r.readPos >= r.totalLen {
		r.frags = nil
		r.fragStart = nil
		r.totalLen = 0
		r.readPos = 0
		return
	}
	if r.readPos == 0 {
		return
	}
	idx, off := r.locate(r.readPos)
	newFrags := make([][]byte, 0, len(r.frags)-idx)
	newFrags = append(newFrags, r.frags[idx][off:])
	newFrags = append(newFrags, r.frags[idx+1:]...)
	r.frags = newFrags
	r.fragStart = make([]int, len(newFrags))
	total := 0
	for i, f := range newFrags {
		r.fragStart[i] = total
		total += len(f)
	}
	r.totalLen = total
	r.readPos = 0
}

// TakeRemaining prunes the rope and returns every unread byte as one
// contiguous slice, leaving the rope empty. It is how a completed
// request hands its unconsumed trailing bytes to whatever assembles
// the next pipelined request.
func (r *Rope) TakeRemaining() []byte {
	r.Prune()
	if r.totalLen == 0 {
		return nil
	}
	out := make([]byte, 0, r.totalLen)
	for _, f := range r.frags {
		out = append(out, f...)
	}
	r.frags = nil
	r.fragStart = nil
	r.totalLen = 0
	r.readPos = 0
	return out
}

// FromBytes builds a Rope that owns b as its sole fragment, read
// cursor at 0. It is used to hand a Whole body's raw bytes back as a
// Rope of their own.
func FromBytes(b []byte) *Rope {
	r := &Rope{}
	if len(b) > 0 {
		r.Push(b)
	}
	return r
}
