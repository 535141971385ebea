package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/chainforge/chainforge/util/chainhash"
)

// MaxPayloadSize is the maximum number of payload bytes a block may carry.
// The executor plugin interprets the payload; this bound only protects the
// store and the orphan pool from oversized submissions.
const MaxPayloadSize = 1 << 20 // 1MB

// Block is the unit of chain data. A block references its predecessor via
// ParentHash, carries its distance from genesis in Height, and an opaque
// Payload that only the embedding application's executor interprets.
//
// Blocks are treated as immutable once submitted for processing: the
// content-derived BlockHash would silently change on mutation.
type Block struct {
	// ParentHash is the hash of the predecessor block. It is
	// chainhash.ZeroHash for the genesis block.
	ParentHash chainhash.Hash

	// Height is the distance from genesis. It must equal the parent's
	// height plus one, and zero for genesis.
	Height uint64

	// Payload is the application-defined block content.
	Payload []byte
}

// NewBlock returns a block with the given parent linkage and payload. The
// payload slice is copied so later caller mutations don't alter the block's
// content hash.
func NewBlock(parentHash *chainhash.Hash, height uint64, payload []byte) *Block {
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return &Block{
		ParentHash: *parentHash,
		Height:     height,
		Payload:    payloadCopy,
	}
}

// IsGenesis returns whether the block declares itself the chain root, which
// is encoded as the all-zero parent hash.
func (b *Block) IsGenesis() bool {
	return b.ParentHash.IsZero()
}

// BlockHash computes the block's content-derived identifier: the blake2b-256
// of the block's canonical serialization. Two blocks with identical content
// therefore deliberately collide, which is what makes re-submission of a
// known block idempotent.
func (b *Block) BlockHash() *chainhash.Hash {
	writer := chainhash.NewHashWriter()
	err := b.Serialize(writer)
	if err != nil {
		// Both HashWriter.Write and Serialize on it can never fail.
		panic(errors.Wrap(err, "serializing block to hash writer can never fail"))
	}
	hash := writer.Finalize()
	return &hash
}

// Serialize writes the block's canonical encoding to w: parent hash, height,
// payload length, payload. The same encoding feeds both persistence and
// BlockHash.
func (b *Block) Serialize(w io.Writer) error {
	if _, err := w.Write(b.ParentHash[:]); err != nil {
		return errors.WithStack(err)
	}
	if err := writeUint64(w, b.Height); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(b.Payload))); err != nil {
		return err
	}
	if _, err := w.Write(b.Payload); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Bytes returns the block's canonical encoding as a byte slice.
func (b *Block) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	err := b.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize reads a block in its canonical encoding from r.
func (b *Block) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, b.ParentHash[:]); err != nil {
		return errors.WithStack(err)
	}
	height, err := readUint64(r)
	if err != nil {
		return err
	}
	payloadLength, err := readUint64(r)
	if err != nil {
		return err
	}
	if payloadLength > MaxPayloadSize {
		return errors.Errorf("payload length %d exceeds maximum of %d",
			payloadLength, MaxPayloadSize)
	}
	payload := make([]byte, payloadLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return errors.WithStack(err)
	}

	b.Height = height
	b.Payload = payload
	return nil
}

// DeserializeBlock reads a block in its canonical encoding from the given
// byte slice.
func DeserializeBlock(serializedBlock []byte) (*Block, error) {
	block := &Block{}
	err := block.Deserialize(bytes.NewReader(serializedBlock))
	if err != nil {
		return nil, err
	}
	return block, nil
}

func writeUint64(w io.Writer, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
