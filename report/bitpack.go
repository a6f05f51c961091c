package report

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// writeBase64Records serializes records as the packed binary layout
// ([order: uint16 little-endian][bit-vector]) and writes it to data as one
// or more base64 text chunks no larger than flushBytes of raw input each,
// matching the original's streaming Base64Encode flush loop.
func writeBase64Records(data *Element, records []BitPackedRecord) {
	var buf []byte
	flush := func() {
		if len(buf) == 0 {
			return
		}
		data.AddText(base64.StdEncoding.EncodeToString(buf))
		buf = buf[:0]
	}
	for _, rec := range records {
		buf = append(buf, byte(rec.Order), byte(rec.Order>>8))
		buf = append(buf, rec.Vector...)
		if len(buf) >= flushBytes {
			flush()
		}
	}
	flush()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
