package transport

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func pipePair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	return New(a), New(b)
}

func TestRoundTripAcrossCompressionModes(t *testing.T) {
	payload := bytes.Repeat([]byte("hello thicketd "), 20)

	for _, mode := range []CompressionMode{Auto, Compressed, Uncompressed} {
		mode := mode
		t.Run(modeName(mode), func(t *testing.T) {
			client, server := pipePair(t)
			defer client.Close()
			defer server.Close()

			client.SetCompressionMode(mode)

			errCh := make(chan error, 1)
			go func() { errCh <- client.WriteMessage(payload) }()

			got, err := server.ReadMessage()
			if err != nil {
				t.Fatalf("ReadMessage: %v", err)
			}
			if err := <-errCh; err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("round trip mismatch: got %q want %q", got, payload)
			}
		})
	}
}

func modeName(m CompressionMode) string {
	switch m {
	case Auto:
		return "auto"
	case Compressed:
		return "compressed"
	default:
		return "uncompressed"
	}
}

func TestRoundTripAcrossHeaderModes(t *testing.T) {
	payload := []byte("small payload")

	for _, mode := range []HeaderMode{HeaderAuto, HeaderBrief, HeaderExtended} {
		mode := mode
		client, server := pipePair(t)
		client.SetHeaderMode(mode)
		client.SetCompressionMode(Uncompressed)

		errCh := make(chan error, 1)
		go func() { errCh <- client.WriteMessage(payload) }()

		got, err := server.ReadMessage()
		if err != nil {
			t.Fatalf("header mode %v: ReadMessage: %v", mode, err)
		}
		if err := <-errCh; err != nil {
			t.Fatalf("header mode %v: WriteMessage: %v", mode, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("header mode %v: mismatch", mode)
		}
		client.Close()
		server.Close()
	}
}

// TestBriefHeaderBoundary exercises the exact 14-bit brief length
// boundary: 16383 bytes must fit a brief header, 16384 must escalate to
// an extended one under HeaderAuto, and both must round-trip
// identically uncompressed.
func TestBriefHeaderBoundary(t *testing.T) {
	cases := []int{briefMaxPayload, briefMaxPayload + 1}

	for _, size := range cases {
		payload := bytes.Repeat([]byte{'A'}, size)

		client, server := pipePair(t)
		client.SetCompressionMode(Uncompressed)

		errCh := make(chan error, 1)
		go func() { errCh <- client.WriteMessage(payload) }()

		got, err := server.ReadMessage()
		if err != nil {
			t.Fatalf("size %d: ReadMessage: %v", size, err)
		}
		if err := <-errCh; err != nil {
			t.Fatalf("size %d: WriteMessage: %v", size, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("size %d: payload mismatch", size)
		}

		client.Close()
		server.Close()
	}
}

// TestForcedBriefHeaderRejectsOversizePayload mirrors sendMsg's
// PayloadTooLarge policy: a caller that pins HeaderBrief cannot send a
// payload that doesn't fit 14 bits, regardless of compression.
func TestForcedBriefHeaderRejectsOversizePayload(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()
	defer server.Close()

	client.SetHeaderMode(HeaderBrief)
	client.SetCompressionMode(Uncompressed)

	payload := bytes.Repeat([]byte{'B'}, briefMaxPayload+1)
	err := client.WriteMessage(payload)
	if err != ErrPayloadTooLarge {
		t.Fatalf("got err %v, want ErrPayloadTooLarge", err)
	}
}

// TestLargeUncompressedPayloadTooLargeButCompressedSucceeds is scenario
// 6: a 100,000-byte uniform payload is rejected in brief-forced
// uncompressed mode, but succeeds and round-trips identically once
// compression is allowed to shrink it (small enough for HeaderAuto to
// pick a brief header).
func TestLargeUncompressedPayloadTooLargeButCompressedSucceeds(t *testing.T) {
	payload := bytes.Repeat([]byte{'X'}, 100000)

	t.Run("uncompressed brief rejected", func(t *testing.T) {
		client, server := pipePair(t)
		defer client.Close()
		defer server.Close()

		client.SetHeaderMode(HeaderBrief)
		client.SetCompressionMode(Uncompressed)

		err := client.WriteMessage(payload)
		if err != ErrPayloadTooLarge {
			t.Fatalf("got err %v, want ErrPayloadTooLarge", err)
		}
	})

	t.Run("compressed succeeds and round-trips", func(t *testing.T) {
		client, server := pipePair(t)
		defer client.Close()
		defer server.Close()

		client.SetCompressionMode(Compressed)

		errCh := make(chan error, 1)
		go func() { errCh <- client.WriteMessage(payload) }()

		got, err := server.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		if err := <-errCh; err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip mismatch for large payload")
		}
	})
}

func TestIncomingMessageOverMaxSizeRejected(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()
	defer server.Close()

	server.SetMaxMessageSize(10)
	client.SetCompressionMode(Uncompressed)

	payload := bytes.Repeat([]byte{'C'}, 100)
	errCh := make(chan error, 1)
	go func() { errCh <- client.WriteMessage(payload) }()

	_, err := server.ReadMessage()
	if err != ErrMessageTooLarge {
		t.Fatalf("got err %v, want ErrMessageTooLarge", err)
	}
	<-errCh
}

// TestRxInactivityWatchdogAbortsStalledRead mirrors
// mRxInactivityAbortTimer: a peer that never sends anything causes
// ReadMessage to give up rather than block forever.
func TestRxInactivityWatchdogAbortsStalledRead(t *testing.T) {
	_, server := pipePair(t)
	defer server.Close()

	server.SetRxInactivityTimeout(20 * time.Millisecond)

	_, err := server.ReadMessage()
	if err == nil {
		t.Fatal("expected the stalled read to time out")
	}
}

func TestByteCountersTrackWireTraffic(t *testing.T) {
	client, server := pipePair(t)
	defer client.Close()
	defer server.Close()

	client.SetCompressionMode(Uncompressed)
	payload := []byte("count me")

	errCh := make(chan error, 1)
	go func() { errCh <- client.WriteMessage(payload) }()

	if _, err := server.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	if client.BytesSent() == 0 {
		t.Fatal("expected BytesSent to be nonzero")
	}
	if server.BytesReceived() == 0 {
		t.Fatal("expected BytesReceived to be nonzero")
	}
}
