package events

import (
	"testing"
)

func TestDecodeCommandValidAction(t *testing.T) {
	raw := []byte(`{"action":"send","payload":{"roomId":"team:42","body":"gg"}}`)

	cmd, err := DecodeCommand(raw)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	if cmd.Action != ActionSend {
		t.Errorf("expected action %q, got %q", ActionSend, cmd.Action)
	}

	sc, err := cmd.DecodeSend()
	if err != nil {
		t.Fatalf("DecodeSend failed: %v", err)
	}
	if sc.RoomID != "team:42" || sc.Body != "gg" {
		t.Errorf("unexpected send payload: %+v", sc)
	}
}

func TestDecodeCommandUnknownAction(t *testing.T) {
	if _, err := DecodeCommand([]byte(`{"action":"shout","payload":{}}`)); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestDecodeCommandMalformedFrame(t *testing.T) {
	if _, err := DecodeCommand([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed frame")
	}
}

func TestDecodeSendNormalizesBlankOptionals(t *testing.T) {
	raw := []byte(`{"action":"send","payload":{"roomId":"team:1","body":"hi","replyTo":"  ","url":"","fileName":"clip.mp4"}}`)

	cmd, err := DecodeCommand(raw)
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	sc, err := cmd.DecodeSend()
	if err != nil {
		t.Fatalf("DecodeSend failed: %v", err)
	}

	if sc.ReplyTo != nil {
		t.Errorf("blank replyTo should collapse to nil, got %q", *sc.ReplyTo)
	}
	if sc.URL != nil {
		t.Errorf("empty url should collapse to nil, got %q", *sc.URL)
	}
	if sc.FileName == nil || *sc.FileName != "clip.mp4" {
		t.Error("populated fileName should survive normalization")
	}
}

func TestDecodeTyping(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"action":"typing","payload":{"roomId":"team:7","isTyping":true}}`))
	if err != nil {
		t.Fatalf("DecodeCommand failed: %v", err)
	}
	tc, err := cmd.DecodeTyping()
	if err != nil {
		t.Fatalf("DecodeTyping failed: %v", err)
	}
	if tc.RoomID != "team:7" || !tc.IsTyping {
		t.Errorf("unexpected typing payload: %+v", tc)
	}
}
