package orders

// Status is the fulfillment stage of an order. The store treats it as an
// open string; the progression below is the expected path, not an enforced
// state machine.
type Status string

const (
	StatusPlaced     Status = "Dipesan"
	StatusProcessing Status = "Diproses"
	StatusPickedUp   Status = "Diambil"
	StatusInTransit  Status = "Dalam Pengiriman"
	StatusArrived    Status = "Tiba di Tujuan"
	StatusDone       Status = "Selesai"
)

var progression = []Status{
	StatusPlaced,
	StatusProcessing,
	StatusPickedUp,
	StatusInTransit,
	StatusArrived,
	StatusDone,
}

// Rank returns the position of s in the expected progression, or -1 for a
// label outside the known set.
func (s Status) Rank() int {
	for i, st := range progression {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Known() bool { return s.Rank() >= 0 }
