package codec

import (
	"bytes"
	"strings"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type cart struct {
	UserID string   `json:"user_id" msgpack:"user_id" cbor:"user_id"`
	Items  []string `json:"items" msgpack:"items" cbor:"items"`
	Total  int64    `json:"total" msgpack:"total" cbor:"total"`
}

func sameCart(a, b cart) bool {
	return a.UserID == b.UserID && a.Total == b.Total && strings.Join(a.Items, ",") == strings.Join(b.Items, ",")
}

func TestStructCodecs(t *testing.T) {
	in := cart{UserID: "u-1", Items: []string{"apple", "pear"}, Total: 420}
	codecs := map[string]Codec[cart]{
		"json":     JSON[cart]{},
		"msgpack":  Msgpack[cart]{},
		"cbor":     MustCBOR[cart](false),
		"cbor-det": MustCBOR[cart](true),
	}
	for name, cd := range codecs {
		b, err := cd.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := cd.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !sameCart(in, out) {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
}

func TestSessionBagCodecs(t *testing.T) {
	in := map[string]any{"visits": int64(3), "name": "ada"}
	for name, cd := range map[string]Codec[map[string]any]{
		"msgpack": Msgpack[map[string]any]{},
		"cbor":    MustCBOR[map[string]any](true),
	} {
		b, err := cd.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := cd.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if out["name"] != "ada" {
			t.Fatalf("%s: name=%v", name, out["name"])
		}
	}
}

func TestCBORDeterministic(t *testing.T) {
	cd := MustCBOR[map[string]int](true)
	a, _ := cd.Encode(map[string]int{"a": 1, "b": 2, "c": 3})
	b, _ := cd.Encode(map[string]int{"c": 3, "b": 2, "a": 1})
	if !bytes.Equal(a, b) {
		t.Fatalf("deterministic encoding differs: %x vs %x", a, b)
	}
}

func TestProtobuf(t *testing.T) {
	cd := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := cd.Encode(wrapperspb.String("cart:42"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := cd.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !proto.Equal(got, wrapperspb.String("cart:42")) {
		t.Fatalf("got %v", got)
	}
}

func TestRawCodecs(t *testing.T) {
	b, _ := Bytes{}.Encode([]byte{1, 2, 3})
	if out, _ := (Bytes{}).Decode(b); !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Fatalf("bytes codec mismatch: %v", out)
	}
	s, _ := String{}.Encode("héllo")
	if out, _ := (String{}).Decode(s); out != "héllo" {
		t.Fatalf("string codec mismatch: %q", out)
	}
}

func TestLimit(t *testing.T) {
	cd := Limit[string]{Inner: String{}, Max: 4}
	if _, err := cd.Encode("12345"); err == nil {
		t.Fatalf("expected encode error for oversized payload")
	}
	if _, err := cd.Decode([]byte("12345")); err == nil {
		t.Fatalf("expected decode error for oversized payload")
	}
	if v, err := cd.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("decode within limit: v=%q err=%v", v, err)
	}

	unlimited := Limit[string]{Inner: String{}}
	if _, err := unlimited.Encode(strings.Repeat("x", 1<<16)); err != nil {
		t.Fatalf("Max<=0 should disable the limit: %v", err)
	}
}
