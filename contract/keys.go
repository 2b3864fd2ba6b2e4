package contract

// Storage key prefixes. Single-record keys are the bare prefix byte; per-id
// keys append a little-endian uint64; per-address keys append the address
// bytes so nothing nests.
const (
	kConfig       byte = 0x01
	kStage        byte = 0x02
	kTotals       byte = 0x03
	kContribution byte = 0x04
	kStake        byte = 0x05
	kReferral     byte = 0x06

	kProposal byte = 0x10
	kVote     byte = 0x11
)

// proposalCountKey holds the running proposal counter used to mint ids.
const proposalCountKey = "count:props"

// packU64LEInline sprinkles a uint64 into dst in little-endian order so keys
// stay compact and sort-stable per prefix.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

func configKey() string { return string([]byte{kConfig}) }
func stageKey() string  { return string([]byte{kStage}) }
func totalsKey() string { return string([]byte{kTotals}) }

// contributionKey mixes the prefix with address bytes to avoid nested maps
// in host storage.
func contributionKey(addr Address) string {
	buf := make([]byte, 0, 1+len(addr))
	buf = append(buf, kContribution)
	buf = append(buf, addr...)
	return string(buf)
}

func stakeKey(addr Address) string {
	buf := make([]byte, 0, 1+len(addr))
	buf = append(buf, kStake)
	buf = append(buf, addr...)
	return string(buf)
}

func referralKey(addr Address) string {
	buf := make([]byte, 0, 1+len(addr))
	buf = append(buf, kReferral)
	buf = append(buf, addr...)
	return string(buf)
}

// proposalKey encodes the id under the 0x10 prefix keeping proposal records
// contiguous.
func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposal
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// voteKey stores the write-once (proposal, voter) flag.
func voteKey(id uint64, voter Address) string {
	buf := make([]byte, 0, 9+len(voter))
	var idb [8]byte
	packU64LEInline(id, idb[:])
	buf = append(buf, kVote)
	buf = append(buf, idb[:]...)
	buf = append(buf, voter...)
	return string(buf)
}
