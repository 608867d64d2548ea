package sip

import (
	"fmt"
	"strings"
	"sync"

	"firestige.xyz/strix/internal/buffer"
)

// ContentDecoder turns a raw body into a structured representation.
// Decoders are registered per media type ("type/subtype", lowercase);
// the engine itself knows nothing about body formats.
type ContentDecoder func(body buffer.View) (any, error)

var contentDecoders = struct {
	sync.RWMutex
	byType map[string]ContentDecoder
}{byType: make(map[string]ContentDecoder)}

// RegisterContentDecoder installs dec for the given media type,
// replacing any previous registration. Safe for concurrent use.
func RegisterContentDecoder(mediaType string, dec ContentDecoder) {
	contentDecoders.Lock()
	defer contentDecoders.Unlock()
	contentDecoders.byType[strings.ToLower(mediaType)] = dec
}

func lookupContentDecoder(mediaType string) (ContentDecoder, bool) {
	contentDecoders.RLock()
	defer contentDecoders.RUnlock()
	dec, ok := contentDecoders.byType[mediaType]
	return dec, ok
}

// Body is a framed message body: the raw byte view plus the decoded
// structure when a registered decoder matched the content type.
type Body struct {
	Raw     buffer.View
	Decoded any // nil for opaque bodies
}

// Length returns the actual body length in bytes.
func (b Body) Length() int { return b.Raw.Len() }

// IsOpaque reports whether the body was left undecoded.
func (b Body) IsOpaque() bool { return b.Decoded == nil }

// frameContent frames the body range according to the Content-Type
// header. Without a content type, or with an empty body, the body is
// opaque. A registered decoder that fails surfaces the failure — there
// is no silent fallback to opaque; the caller decides whether that is
// fatal.
func frameContent(ct *ContentTypeHeader, body buffer.View) (Body, error) {
	if ct == nil || body.IsEmpty() {
		return Body{Raw: body}, nil
	}
	dec, ok := lookupContentDecoder(ct.MediaType())
	if !ok {
		return Body{Raw: body}, nil
	}
	decoded, err := dec(body)
	if err != nil {
		return Body{}, fmt.Errorf("%w: %s: %v", ErrContentDecode, ct.MediaType(), err)
	}
	return Body{Raw: body, Decoded: decoded}, nil
}
