package graphicsdevices

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
)

// deviceColumns is the expected column count of a device row:
// vendor_hex, adapter_hex, vendor_name, adapter_name.
const deviceColumns = 4

// ErrBadRow marks a CSV row that does not parse into a device. The reader
// stays usable; earlier and later rows are unaffected.
var ErrBadRow = errors.New("malformed device row")

// DeviceReader streams graphics devices out of a CSV document. An optional
// header row is detected on the first record and skipped.
type DeviceReader struct {
	csv     *csv.Reader
	started bool
}

// NewDeviceReader creates a streaming device reader over r.
func NewDeviceReader(r io.Reader) *DeviceReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &DeviceReader{csv: cr}
}

// Next returns the next device. io.EOF signals the end of the document; a
// row-scoped parse failure wraps ErrBadRow and does not end the stream.
func (r *DeviceReader) Next() (dataapi.GraphicsDevice, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataapi.GraphicsDevice{}, io.EOF
		}

		return dataapi.GraphicsDevice{}, errors.Wrap(ErrBadRow, err.Error())
	}

	if !r.started {
		r.started = true

		if isHeader(record) {
			return r.Next()
		}
	}

	if len(record) != deviceColumns {
		return dataapi.GraphicsDevice{}, errors.Wrapf(ErrBadRow,
			"expected %d columns, got %d", deviceColumns, len(record))
	}

	device := dataapi.GraphicsDevice{
		VendorHex:   strings.TrimSpace(record[0]),
		AdapterHex:  strings.TrimSpace(record[1]),
		VendorName:  strings.TrimSpace(record[2]),
		AdapterName: strings.TrimSpace(record[3]),
	}

	if device.VendorHex == "" || device.AdapterHex == "" {
		return dataapi.GraphicsDevice{}, errors.Wrap(ErrBadRow, "empty hex pair")
	}

	return device, nil
}

// ReadAll drains the reader, collecting the good rows and the row-scoped
// errors separately.
func ReadAll(r *DeviceReader) (devices []dataapi.GraphicsDevice, badRows []error) {
	for {
		device, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return devices, badRows
			}

			badRows = append(badRows, err)

			continue
		}

		devices = append(devices, device)
	}
}

// isHeader reports whether the first record looks like a header row rather
// than data. Hex columns of data rows start with "0x".
func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}

	first := strings.ToLower(strings.TrimSpace(record[0]))

	return first == "vendor_hex" || strings.Contains(first, "vendor")
}
