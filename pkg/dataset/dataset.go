package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

// ErrMalformedRecord is returned when an order does not carry exactly one
// timestamp per phase.
var ErrMalformedRecord = errors.New("malformed order record")

// Load reads a dataset file, choosing the codec from its extension.
func Load(path string) ([]cfd.Order, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return Decode(file, codec)
}

// Save writes orders to path, choosing the codec from its extension.
func Save(path string, orders []cfd.Order) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}

	encodeErr := Encode(file, codec, orders)
	closeErr := file.Close()

	if encodeErr != nil {
		return encodeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close dataset: %w", closeErr)
	}

	return nil
}

// Decode reads a dataset document with the given codec.
func Decode(r io.Reader, codec Codec) ([]cfd.Order, error) {
	var rows [][]string

	err := codec.Decode(r, &rows)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	return FromRows(rows)
}

// Encode writes orders with the given codec.
func Encode(w io.Writer, codec Codec, orders []cfd.Order) error {
	err := codec.Encode(w, ToRows(orders))
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	return nil
}

// FromRows converts raw string rows into orders.
func FromRows(rows [][]string) ([]cfd.Order, error) {
	orders := make([]cfd.Order, len(rows))

	for i, row := range rows {
		if len(row) != cfd.NumPhases {
			return nil, fmt.Errorf("%w: order %d has %d timestamps, want %d",
				ErrMalformedRecord, i, len(row), cfd.NumPhases)
		}

		copy(orders[i][:], row)
	}

	return orders, nil
}

// ToRows converts orders into plain string rows.
func ToRows(orders []cfd.Order) [][]string {
	rows := make([][]string, len(orders))

	for i, o := range orders {
		rows[i] = append([]string(nil), o[:]...)
	}

	return rows
}
