package entries

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/ugorji/go/codec"
)

var (
	// ErrShortEntry is returned when serialized data is too short to carry a type prefix
	ErrShortEntry = errors.New("entry data too short")

	// ErrTypeMismatch is returned when decoding into an entry of a different type
	ErrTypeMismatch = errors.New("entry type mismatch")

	// ErrUnknownType is returned for a type prefix with no registered entry
	ErrUnknownType = errors.New("unknown entry type")
)

var handle = newHandle()

func newHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}

// Encode serializes an entry as a 2-byte big-endian type prefix followed by
// its msgpack body.
func Encode(e entry.Entry) ([]byte, error) {
	var body []byte
	if err := codec.NewEncoderBytes(&body, handle).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	out := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(e.Type()))
	return append(out, body...), nil
}

// Decode deserializes data into e. The stored type must match e.Type().
func Decode(data []byte, e entry.Entry) error {
	t, err := TypeOf(data)
	if err != nil {
		return err
	}
	if t != e.Type() {
		return fmt.Errorf("%w: stored %s, want %s", ErrTypeMismatch, t, e.Type())
	}
	if err := codec.NewDecoderBytes(data[2:], handle).Decode(e); err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	return nil
}

// TypeOf returns the type prefix of serialized entry data.
func TypeOf(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return 0, ErrShortEntry
	}
	return entry.Type(binary.BigEndian.Uint16(data[:2])), nil
}

// New returns a zero value of the entry registered for t.
func New(t entry.Type) (entry.Entry, error) {
	switch t {
	case entry.TypeSequences:
		return &Sequences{}, nil
	case entry.TypeLedgerRoot:
		return &LedgerRoot{}, nil
	case entry.TypeAsset:
		return &Asset{}, nil
	case entry.TypeBalance:
		return &Balance{}, nil
	case entry.TypeReservation:
		return &Reservation{}, nil
	case entry.TypeOperatorApproval:
		return &OperatorApproval{}, nil
	case entry.TypeMarket:
		return &Market{}, nil
	case entry.TypeOffer:
		return &Offer{}, nil
	case entry.TypeBuyRequest:
		return &BuyRequest{}, nil
	case entry.TypeMoneyToken:
		return &MoneyToken{}, nil
	case entry.TypeMoneyBalance:
		return &MoneyBalance{}, nil
	case entry.TypeAllowance:
		return &Allowance{}, nil
	case entry.TypeRegistry:
		return &Registry{}, nil
	case entry.TypeRegistryOperator:
		return &RegistryOperator{}, nil
	case entry.TypeApproval:
		return &Approval{}, nil
	case entry.TypeFactory:
		return &Factory{}, nil
	case entry.TypeFactoryClient:
		return &FactoryClient{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// DecodeAny decodes serialized data into a freshly allocated entry of the
// stored type.
func DecodeAny(data []byte) (entry.Entry, error) {
	t, err := TypeOf(data)
	if err != nil {
		return nil, err
	}
	e, err := New(t)
	if err != nil {
		return nil, err
	}
	if err := Decode(data, e); err != nil {
		return nil, err
	}
	return e, nil
}
