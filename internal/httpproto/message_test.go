package httpproto

import "testing"

func TestParseReady(t *testing.T) {
	raw := "GET /imgfs/list HTTP/1.1\r\nHost: localhost\r\n\r\n"
	status, msg := Parse([]byte(raw))
	if status != Ready {
		t.Fatalf("status = %v, want Ready", status)
	}
	if msg.Method != "GET" {
		t.Errorf("Method = %q, want GET", msg.Method)
	}
	if msg.URI != "/imgfs/list" {
		t.Errorf("URI = %q, want /imgfs/list", msg.URI)
	}
	if len(msg.Body) != 0 {
		t.Errorf("Body = %q, want empty", msg.Body)
	}
}

func TestParseNeedMoreNoHeaderEnd(t *testing.T) {
	status, _ := Parse([]byte("GET /imgfs/list HTTP/1.1\r\nHost: localhost\r\n"))
	if status != NeedMore {
		t.Fatalf("status = %v, want NeedMore", status)
	}
}

func TestParseNeedMoreBodyPending(t *testing.T) {
	raw := "POST /imgfs/insert?name=x HTTP/1.1\r\nContent-Length: 10\r\n\r\n12345"
	status, _ := Parse([]byte(raw))
	if status != NeedMore {
		t.Fatalf("status = %v, want NeedMore (body short by 5 bytes)", status)
	}
}

func TestParseReadyWithBody(t *testing.T) {
	raw := "POST /imgfs/insert?name=x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	status, msg := Parse([]byte(raw))
	if status != Ready {
		t.Fatalf("status = %v, want Ready", status)
	}
	if string(msg.Body) != "hello" {
		t.Errorf("Body = %q, want %q", msg.Body, "hello")
	}
}

func TestParseMalformed(t *testing.T) {
	raw := "GARBAGE REQUEST LINE\r\n\r\n"
	status, _ := Parse([]byte(raw))
	if status != Malformed {
		t.Fatalf("status = %v, want Malformed", status)
	}
}

func TestGetVar(t *testing.T) {
	v, ok := GetVar("/imgfs/read?img_id=abc&res=thumb", "img_id")
	if !ok || v != "abc" {
		t.Errorf("GetVar(img_id) = %q, %v, want abc, true", v, ok)
	}
	v, ok = GetVar("/imgfs/read?img_id=abc&res=thumb", "res")
	if !ok || v != "thumb" {
		t.Errorf("GetVar(res) = %q, %v, want thumb, true", v, ok)
	}
	if _, ok := GetVar("/imgfs/read?img_id=abc", "missing"); ok {
		t.Error("GetVar(missing) should report ok=false")
	}
}

func TestReplyFraming(t *testing.T) {
	out := Reply(StatusOK, "text/plain", []byte("hi"))
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\nhi"
	if string(out) != want {
		t.Errorf("Reply = %q, want %q", out, want)
	}
}

func TestContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 42\r\n\r\n"
	if got := ContentLength([]byte(raw)); got != 42 {
		t.Errorf("ContentLength = %d, want 42", got)
	}
}
