package program

// accountStorageOverhead is the metadata charge added to every account's
// data length when computing rent.
const accountStorageOverhead = 128

// Rent holds the platform parameters for the minimum-balance calculation.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

// DefaultRent mirrors the platform's mainnet parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// MinimumBalance returns the balance an account of the given data length
// must hold to persist indefinitely.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(dataLen) + accountStorageOverhead
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}
