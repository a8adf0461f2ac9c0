package bank

import (
	"encoding/binary"
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/solframe/pubkey"
)

// SnapshotCID returns a deterministic content identifier for the full
// ledger: accounts serialized in address order, identified as an
// IPFS-compatible CIDv1 (raw + sha2-256). Two banks that processed the same
// transactions from the same genesis produce the same CID.
func (b *Bank) SnapshotCID() (string, error) {
	addrs := make([]pubkey.Pubkey, 0, len(b.accounts))
	for addr := range b.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Less(addrs[j])
	})

	var buf []byte
	var u64 [8]byte
	for _, addr := range addrs {
		acc := b.accounts[addr]
		buf = append(buf, addr[:]...)
		binary.LittleEndian.PutUint64(u64[:], acc.lamports)
		buf = append(buf, u64[:]...)
		buf = append(buf, acc.owner[:]...)
		binary.LittleEndian.PutUint64(u64[:], uint64(len(acc.data)))
		buf = append(buf, u64[:]...)
		buf = append(buf, acc.data...)
		if acc.executable {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	sum, err := multihash.Sum(buf, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
