package layout

import "sync/atomic"

// Token identifies one simulation session. Tokens are strictly increasing
// per Sessions; NoSession is never issued.
type Token uint64

// NoSession is the token value when no session is live.
const NoSession Token = 0

// Sessions issues tokens and remembers which one is live. Issued tokens
// never repeat, even after Clear, so a frame from any earlier session can
// never match a later one.
type Sessions struct {
	last atomic.Uint64
	live atomic.Uint64
}

// Next issues a new token and makes it the live one.
func (s *Sessions) Next() Token {
	t := s.last.Add(1)
	s.live.Store(t)
	return Token(t)
}

// Current returns the live token, or NoSession.
func (s *Sessions) Current() Token {
	return Token(s.live.Load())
}

// Live reports whether t is the live token.
func (s *Sessions) Live(t Token) bool {
	return t != NoSession && Token(s.live.Load()) == t
}

// Clear ends the live session without issuing a new one.
func (s *Sessions) Clear() {
	s.live.Store(uint64(NoSession))
}

// encodeFrame builds the position frame exchanged with a backend: slot 0
// carries the token, followed by the interleaved x/y positions. Tokens stay
// exact in a float64 up to 2^53.
func encodeFrame(t Token, positions []float64) []float64 {
	f := make([]float64, 1+len(positions))
	f[0] = float64(t)
	copy(f[1:], positions)
	return f
}

// decodeFrame splits a frame into its token and positions. The positions
// alias the frame.
func decodeFrame(f []float64) (Token, []float64) {
	if len(f) == 0 {
		return NoSession, nil
	}
	return Token(f[0]), f[1:]
}
