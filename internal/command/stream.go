package command

// Stream is the write side of an instruction sequence. Plugins only append.
type Stream interface {
	Write(Instr)
	// BeginIgnore suppresses writes until the matching EndIgnore. Calls nest.
	BeginIgnore()
	EndIgnore()
}

// PushStream is an append-only in-memory Stream.
type PushStream struct {
	instrs []Instr
	ignore int
}

func NewPushStream() *PushStream {
	return &PushStream{instrs: make([]Instr, 0, 64)}
}

func (s *PushStream) Write(in Instr) {
	if s.ignore > 0 {
		return
	}
	s.instrs = append(s.instrs, in)
}

func (s *PushStream) BeginIgnore() {
	s.ignore++
}

func (s *PushStream) EndIgnore() {
	if s.ignore > 0 {
		s.ignore--
	}
}

// Ignoring reports whether writes are currently suppressed.
func (s *PushStream) Ignoring() bool {
	return s.ignore > 0
}

// Instrs returns the instructions written so far.
func (s *PushStream) Instrs() []Instr {
	return s.instrs
}

// Len returns the number of instructions written so far.
func (s *PushStream) Len() int {
	return len(s.instrs)
}

// Program is the compiled form of one template.
type Program struct {
	Path   string   `msgpack:"path"`
	Hash   [32]byte `msgpack:"hash"`
	Instrs []Instr  `msgpack:"instrs"`
}
