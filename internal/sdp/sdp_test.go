package sdp

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/strix/internal/buffer"
)

const audioOffer = "v=0\r\n" +
	"o=alice 2890844526 2890844526 IN IP4 atlanta.com\r\n" +
	"s=-\r\n" +
	"c=IN IP4 192.0.2.101\r\n" +
	"t=0 0\r\n" +
	"m=audio 49170 RTP/AVP 0 8\r\n" +
	"a=rtpmap:0 PCMU/8000\r\n" +
	"a=rtpmap:8 PCMA/8000\r\n"

func TestDecodeAudioOffer(t *testing.T) {
	decoded, err := Decode(buffer.FromString(audioOffer))
	require.NoError(t, err)
	sess, ok := decoded.(*Session)
	require.True(t, ok)

	assert.Equal(t, netip.MustParseAddr("192.0.2.101"), sess.ConnectionIP)
	require.Len(t, sess.Media, 1)

	m := sess.Media[0]
	assert.Equal(t, "audio", m.Type)
	assert.Equal(t, "RTP/AVP", m.Proto)
	assert.Equal(t, uint16(49170), m.Port)
	assert.Equal(t, uint16(49171), m.RTCPPort, "rtcp defaults to port+1")
	assert.False(t, m.RTCPMux)
	assert.Equal(t, "PCMU/8000", m.Codec, "first rtpmap wins")
	assert.Equal(t, "sendrecv", m.Direction)
}

func TestDecodeMultipleStreams(t *testing.T) {
	body := "v=0\r\n" +
		"c=IN IP4 203.0.113.7\r\n" +
		"m=audio 6000 RTP/AVP 0\r\n" +
		"a=rtpmap:0 PCMU/8000\r\n" +
		"a=sendonly\r\n" +
		"m=video 6002 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=rtcp-mux\r\n"

	decoded, err := Decode(buffer.FromString(body))
	require.NoError(t, err)
	sess := decoded.(*Session)
	require.Len(t, sess.Media, 2)

	assert.Equal(t, "audio", sess.Media[0].Type)
	assert.Equal(t, "sendonly", sess.Media[0].Direction)

	video := sess.Media[1]
	assert.Equal(t, "video", video.Type)
	assert.True(t, video.RTCPMux)
	assert.Equal(t, video.Port, video.RTCPPort, "rtcp-mux folds rtcp onto the rtp port")
	assert.Equal(t, "H264/90000", video.Codec)
}

func TestDecodeRTCPAttribute(t *testing.T) {
	body := "c=IN IP4 198.51.100.20\r\n" +
		"m=audio 49170 RTP/AVP 0\r\n" +
		"a=rtcp:53020 IN IP4 198.51.100.20\r\n"

	decoded, err := Decode(buffer.FromString(body))
	require.NoError(t, err)
	sess := decoded.(*Session)
	require.Len(t, sess.Media, 1)
	assert.Equal(t, uint16(53020), sess.Media[0].RTCPPort)
}

func TestDecodeIPv6Connection(t *testing.T) {
	body := "c=IN IP6 2001:db8::1\r\n" +
		"m=audio 49170 RTP/AVP 0\r\n"

	decoded, err := Decode(buffer.FromString(body))
	require.NoError(t, err)
	sess := decoded.(*Session)
	assert.Equal(t, netip.MustParseAddr("2001:db8::1"), sess.ConnectionIP)
}

func TestDecodeBareLF(t *testing.T) {
	body := "c=IN IP4 192.0.2.101\nm=audio 49170 RTP/AVP 0\na=inactive\n"

	decoded, err := Decode(buffer.FromString(body))
	require.NoError(t, err)
	sess := decoded.(*Session)
	require.Len(t, sess.Media, 1)
	assert.Equal(t, "inactive", sess.Media[0].Direction)
}

func TestDecodeNoMedia(t *testing.T) {
	_, err := Decode(buffer.FromString("v=0\r\nc=IN IP4 192.0.2.101\r\n"))
	assert.Error(t, err)
}

func TestDecodeSkipsGarbageLines(t *testing.T) {
	body := "v=0\r\n" +
		"not an sdp line\r\n" +
		"c=IN IP4 192.0.2.101\r\n" +
		"m=audio notaport RTP/AVP 0\r\n" +
		"m=audio 49170 RTP/AVP 0\r\n"

	decoded, err := Decode(buffer.FromString(body))
	require.NoError(t, err)
	sess := decoded.(*Session)
	require.Len(t, sess.Media, 1, "media line without a usable port is dropped")
	assert.Equal(t, uint16(49170), sess.Media[0].Port)
}
