package nse

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodeBody wraps the response body in a decoder matching its
// Content-Encoding. Setting Accept-Encoding ourselves (required for
// browser emulation) disables the transport's automatic gzip handling,
// so decoding is done here.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return resp.Body, nil
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		return &compositeCloser{Reader: gz, closers: []io.Closer{gz, resp.Body}}, nil
	case "deflate":
		// Servers disagree on whether "deflate" means raw DEFLATE or
		// zlib-wrapped DEFLATE. Peek at the first two bytes: a valid
		// zlib header has CM=8 and passes the FCHECK checksum.
		br := bufio.NewReader(resp.Body)
		if hdr, err := br.Peek(2); err == nil && hdr[0]&0x0f == 8 && (uint16(hdr[0])<<8|uint16(hdr[1]))%31 == 0 {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, err
			}
			return &compositeCloser{Reader: zr, closers: []io.Closer{zr, resp.Body}}, nil
		}
		fr := flate.NewReader(br)
		return &compositeCloser{Reader: fr, closers: []io.Closer{fr, resp.Body}}, nil
	case "br":
		br := brotli.NewReader(resp.Body)
		return &compositeCloser{Reader: br, closers: []io.Closer{resp.Body}}, nil
	default:
		// Unknown encoding: return the raw body and let JSON parsing
		// surface the problem as an upstream error.
		return resp.Body, nil
	}
}

// compositeCloser reads from a decoder and closes both the decoder and
// the underlying body.
type compositeCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *compositeCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
