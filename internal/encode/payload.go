package encode

import (
	"github.com/lanikai/framecast/internal/pool"
)

// MaxFileName bounds Payload.Name, as on the wire.
const MaxFileName = 255

// Payload is one encoded file on its way to the server stage. The bytes live
// in the encoder's payload pool until Release.
type Payload struct {
	Name string
	Slot *pool.Slot[[]byte]
}

func (p Payload) Bytes() []byte {
	return p.Slot.Value
}

func (p Payload) Size() int {
	return len(p.Slot.Value)
}

func (p Payload) Release() {
	p.Slot.Release()
}
