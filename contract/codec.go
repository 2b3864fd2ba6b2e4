package contract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/big"
)

// Record codec. Stored values are deterministic binary blobs: bools as one
// byte, fixed ints big endian, counts and lengths as varints, big integers
// as length-prefixed decimal strings (base units never round-trip through
// floats).

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// writeString prefixes its length then dumps UTF-8 directly.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

// writeBig stores nil as the empty string, which decodes back to zero.
func (w *binWriter) writeBig(v *big.Int) {
	if v == nil {
		w.writeString("")
		return
	}
	w.writeString(v.String())
}

func (w *binWriter) writeAddress(a Address) {
	w.writeString(string(a))
}

var (
	errTruncatedRecord = errors.New("truncated record")
	errTrailingBytes   = errors.New("trailing bytes after record")
	errBadBigInt       = errors.New("malformed big integer")
)

// binReader mirrors binWriter with a sticky error so decode paths read
// straight through and check once at the end.
type binReader struct {
	buf []byte
	off int
	err error
}

func newReader(b []byte) *binReader { return &binReader{buf: b} }

func (r *binReader) readByte() byte {
	if r.err != nil {
		return 0
	}
	if r.off >= len(r.buf) {
		r.err = errTruncatedRecord
		return 0
	}
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *binReader) readBool() bool {
	return r.readByte() == 1
}

func (r *binReader) readUint64() uint64 {
	if r.err != nil {
		return 0
	}
	if r.off+8 > len(r.buf) {
		r.err = errTruncatedRecord
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *binReader) readInt64() int64 {
	return int64(r.readUint64())
}

func (r *binReader) readVarUint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		r.err = errTruncatedRecord
		return 0
	}
	r.off += n
	return v
}

func (r *binReader) readString() string {
	n := r.readVarUint()
	if r.err != nil {
		return ""
	}
	if n > math.MaxInt32 || r.off+int(n) > len(r.buf) {
		r.err = errTruncatedRecord
		return ""
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s
}

func (r *binReader) readBig() *big.Int {
	s := r.readString()
	if r.err != nil {
		return nil
	}
	if s == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		r.err = errBadBigInt
		return nil
	}
	return v
}

func (r *binReader) readAddress() Address {
	return Address(r.readString())
}

// done reports the sticky error, treating leftover bytes as corruption.
func (r *binReader) done() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return errTrailingBytes
	}
	return nil
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// configRecord is written once by Initialize and never mutated.
type configRecord struct {
	Owner      Address
	Team       Address
	DeployedAt int64
	UnlockAt   int64
}

func encodeConfig(c *configRecord) string {
	w := newWriter()
	w.writeAddress(c.Owner)
	w.writeAddress(c.Team)
	w.writeInt64(c.DeployedAt)
	w.writeInt64(c.UnlockAt)
	return string(w.bytes())
}

func decodeConfig(data string) (*configRecord, error) {
	r := newReader([]byte(data))
	c := &configRecord{
		Owner:      r.readAddress(),
		Team:       r.readAddress(),
		DeployedAt: r.readInt64(),
		UnlockAt:   r.readInt64(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return c, nil
}

// totalsRecord carries the global counters and every one-way latch.
type totalsRecord struct {
	Raised             *big.Int
	Refunded           *big.Int
	Issued             *big.Int
	EcosystemRemaining *big.Int
	SoftCap            bool
	LiquidityLocked    bool
	TeamClaimed        bool
}

func encodeTotals(t *totalsRecord) string {
	w := newWriter()
	w.writeBig(t.Raised)
	w.writeBig(t.Refunded)
	w.writeBig(t.Issued)
	w.writeBig(t.EcosystemRemaining)
	w.writeBool(t.SoftCap)
	w.writeBool(t.LiquidityLocked)
	w.writeBool(t.TeamClaimed)
	return string(w.bytes())
}

func decodeTotals(data string) (*totalsRecord, error) {
	r := newReader([]byte(data))
	t := &totalsRecord{
		Raised:             r.readBig(),
		Refunded:           r.readBig(),
		Issued:             r.readBig(),
		EcosystemRemaining: r.readBig(),
		SoftCap:            r.readBool(),
		LiquidityLocked:    r.readBool(),
		TeamClaimed:        r.readBool(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return t, nil
}

// stakeRecord is overwritten on every stake and deleted on unstake.
type stakeRecord struct {
	Amount *big.Int
	Since  int64
}

func encodeStake(s *stakeRecord) string {
	w := newWriter()
	w.writeBig(s.Amount)
	w.writeInt64(s.Since)
	return string(w.bytes())
}

func decodeStake(data string) (*stakeRecord, error) {
	r := newReader([]byte(data))
	s := &stakeRecord{
		Amount: r.readBig(),
		Since:  r.readInt64(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return s, nil
}

// proposalRecord is append-only; Executed/Passed flip exactly once.
type proposalRecord struct {
	ID           uint64
	Description  string
	Creator      Address
	VotesFor     *big.Int
	VotesAgainst *big.Int
	CreatedAt    int64
	EndTime      int64
	Executed     bool
	Passed       bool
}

func encodeProposal(p *proposalRecord) string {
	w := newWriter()
	w.writeUint64(p.ID)
	w.writeString(p.Description)
	w.writeAddress(p.Creator)
	w.writeBig(p.VotesFor)
	w.writeBig(p.VotesAgainst)
	w.writeInt64(p.CreatedAt)
	w.writeInt64(p.EndTime)
	w.writeBool(p.Executed)
	w.writeBool(p.Passed)
	return string(w.bytes())
}

func decodeProposal(data string) (*proposalRecord, error) {
	r := newReader([]byte(data))
	p := &proposalRecord{
		ID:           r.readUint64(),
		Description:  r.readString(),
		Creator:      r.readAddress(),
		VotesFor:     r.readBig(),
		VotesAgainst: r.readBig(),
		CreatedAt:    r.readInt64(),
		EndTime:      r.readInt64(),
		Executed:     r.readBool(),
		Passed:       r.readBool(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return p, nil
}

// voteRecord marks has-voted and remembers the weight for audits.
type voteRecord struct {
	Support bool
	Weight  *big.Int
	VotedAt int64
}

func encodeVote(v *voteRecord) string {
	w := newWriter()
	w.writeBool(v.Support)
	w.writeBig(v.Weight)
	w.writeInt64(v.VotedAt)
	return string(w.bytes())
}

func decodeVote(data string) (*voteRecord, error) {
	r := newReader([]byte(data))
	v := &voteRecord{
		Support: r.readBool(),
		Weight:  r.readBig(),
		VotedAt: r.readInt64(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return v, nil
}
