package protocol

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
)

func TestDecodeClientSendMessage(t *testing.T) {
	ev, err := DecodeClient([]byte(`{"type":"send_message","channelId":"general","message":"hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	msg, ok := ev.(SendMessage)
	if !ok {
		t.Fatalf("decoded %T, want SendMessage", ev)
	}
	if msg.ChannelID != "general" || msg.Body != "hi" {
		t.Fatalf("decoded %+v", msg)
	}
}

func TestDecodeClientOfferKeepsPayloadVerbatim(t *testing.T) {
	raw := []byte(`{"type":"webrtc_offer","targetSocketId":"c2","offer":{"type":"offer","sdp":"v=0"}}`)
	ev, err := DecodeClient(raw)
	if err != nil {
		t.Fatal(err)
	}
	offer, ok := ev.(Offer)
	if !ok {
		t.Fatalf("decoded %T, want Offer", ev)
	}
	if offer.Target != "c2" {
		t.Fatalf("target = %q", offer.Target)
	}
	if !bytes.Equal(offer.Payload, []byte(`{"type":"offer","sdp":"v=0"}`)) {
		t.Fatalf("payload mutated: %s", offer.Payload)
	}
}

func TestDecodeClientUnknownType(t *testing.T) {
	if _, err := DecodeClient([]byte(`{"type":"bogus"}`)); err == nil {
		t.Fatal("unknown type accepted")
	}
	if _, err := DecodeClient([]byte(`not json`)); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestEncodeInjectsTypeTag(t *testing.T) {
	data, err := Encode(KindUserTyping, UserTyping{UserID: "u1", Username: "ann"})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("encoded frame is not valid JSON: %v", err)
	}
	if got["type"] != "user_typing" || got["userId"] != "u1" || got["username"] != "ann" {
		t.Fatalf("encoded %s", data)
	}
}

func TestEncodeDecodeServerRoundTrip(t *testing.T) {
	msg := domain.Message{ID: 7, ChannelID: "general", UserID: "u1", Username: "ann", Body: "hello"}
	data, err := Encode(KindNewMessage, NewMessage{Message: msg})
	if err != nil {
		t.Fatal(err)
	}
	ev, err := DecodeServer(data)
	if err != nil {
		t.Fatal(err)
	}
	nm, ok := ev.(NewMessage)
	if !ok {
		t.Fatalf("decoded %T, want NewMessage", ev)
	}
	if nm.ID != 7 || nm.Body != "hello" || nm.Username != "ann" {
		t.Fatalf("round trip lost fields: %+v", nm)
	}
}

func TestDecodeServerJoinedVoice(t *testing.T) {
	ev, err := DecodeServer([]byte(`{"type":"user_joined_voice","userId":"u2","socketId":"c9"}`))
	if err != nil {
		t.Fatal(err)
	}
	joined, ok := ev.(UserJoinedVoice)
	if !ok {
		t.Fatalf("decoded %T, want UserJoinedVoice", ev)
	}
	if joined.ConnID != "c9" || joined.UserID != "u2" {
		t.Fatalf("decoded %+v", joined)
	}
}

func TestKindOfCoversEveryClientEvent(t *testing.T) {
	cases := []struct {
		ev   ClientEvent
		want Kind
	}{
		{JoinChannel{}, KindJoinChannel},
		{LeaveChannel{}, KindLeaveChannel},
		{SendMessage{}, KindSendMessage},
		{Typing{}, KindTyping},
		{JoinVoice{}, KindJoinVoice},
		{LeaveVoice{}, KindLeaveVoice},
		{Offer{}, KindOffer},
		{Answer{}, KindAnswer},
		{Candidate{}, KindCandidate},
	}
	for _, c := range cases {
		if got := KindOf(c.ev); got != c.want {
			t.Errorf("KindOf(%T) = %q, want %q", c.ev, got, c.want)
		}
	}
}
