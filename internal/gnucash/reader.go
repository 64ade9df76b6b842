package gnucash

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
)

// gzip magic header
const (
	gzipMagic1 = 0x1f
	gzipMagic2 = 0x8b
)

// newReader returns a reader over the uncompressed XML. GnuCash saves either
// raw XML or gzip-compressed XML; the two-byte magic header distinguishes
// them, so decompression is transparent to the parser.
func newReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == gzipMagic1 && magic[1] == gzipMagic2 {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gnucash: bad gzip stream: %w", err)
		}
		return zr, nil
	}
	return br, nil
}
