package render

// Stream is a pull-based view over a Renderer for callers that only
// want blocks in order.
type Stream struct {
	r   *Renderer
	err error
}

// NewStream wraps a renderer for one-shot consumption.
func NewStream(r *Renderer) *Stream {
	return &Stream{r: r}
}

// Next returns the next rendered block, or nil when the stream is
// exhausted or has failed. Check Err after a nil return.
func (s *Stream) Next() [][]float32 {
	if s.err != nil {
		return nil
	}
	block, err := s.r.RenderBlock()
	if err != nil {
		s.err = err
		return nil
	}
	return block
}

// Err returns the first processor failure encountered, if any.
func (s *Stream) Err() error {
	return s.err
}
