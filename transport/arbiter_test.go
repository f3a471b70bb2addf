package transport

/*
MIT License

Copyright (c) 2015-2026 University Corporation for Atmospheric Research

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

var lf = []byte("\n")

/*arbHandler answers every received line with "Rxd>N" where N is the line length.
A line reading "silence" gets no answer, "late" is answered after 150ms and
"chatter" starts an endless trickle of bytes.*/
func arbHandler(t *testing.T, con net.Conn) {
	t.Helper()
	defer con.Close()
	rdr := bufio.NewReader(con)
	for {
		line, err := rdr.ReadString('\n')
		if err != nil {
			return
		}
		switch line {
		case "silence\n":
		case "late\n":
			time.Sleep(150 * time.Millisecond)
			fmt.Fprintf(con, "late reply\n")
		case "chatter\n":
			go func() {
				for {
					if _, err := con.Write([]byte("x")); err != nil {
						return
					}
					time.Sleep(10 * time.Millisecond)
				}
			}()
		case "two\n":
			fmt.Fprintf(con, "first\nsecond\n")
		default:
			fmt.Fprintf(con, "Rxd>%d\n", len(line)-1)
		}
	}
}

func newTestArbiter(t *testing.T) (*Arbiter, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	dial := newTCPSvr(ctx, t, "tcp", arbHandler)
	a, err := NewArbiter(ctx, 500*time.Millisecond, dial)
	if err != nil {
		cancel()
		t.Fatalf("Need to open arbiter to test: %v", err)
	}
	return a, cancel
}

func TestNewArbiter(t *testing.T) {
	if _, err := NewArbiter(context.Background(), 0, "no-op"); err == nil {
		t.Error("Invalid dial should return an error")
	}
}

func TestArbiter_ReadUntil(t *testing.T) {
	a, cancel := newTestArbiter(t)
	defer cancel()
	defer a.Close()
	_ = a.String()

	if n, e := a.Write([]byte("Garbage\n")); n != 8 || e != nil {
		t.Fatalf("Didnt write what I needed to: %d %v", n, e)
	}
	line, err := a.ReadUntil(lf, 500*time.Millisecond)
	if err != nil || string(line) != "Rxd>7" {
		t.Fatalf("Got %q %v", line, err)
	}

	//two lines in one segment: the second stays buffered
	if _, e := a.Write([]byte("two\n")); e != nil {
		t.Fatal(e)
	}
	first, err := a.ReadUntil(lf, 500*time.Millisecond)
	if err != nil || string(first) != "first" {
		t.Fatalf("Got %q %v", first, err)
	}
	second, err := a.ReadUntil(lf, 10*time.Millisecond)
	if err != nil || string(second) != "second" {
		t.Fatalf("Got %q %v", second, err)
	}
}

func TestArbiter_Timeout(t *testing.T) {
	a, cancel := newTestArbiter(t)
	defer cancel()
	defer a.Close()

	if _, e := a.Write([]byte("silence\n")); e != nil {
		t.Fatal(e)
	}
	timeout := 50 * time.Millisecond
	start := time.Now()
	_, err := a.ReadUntil(lf, timeout)
	took := time.Since(start)
	if err == nil || !IsTimeout(err) {
		t.Fatalf("Expected a timeout, got %v", err)
	}
	if took > timeout+50*time.Millisecond {
		t.Errorf("ReadUntil overshot its timeout: %v", took)
	}
}

func TestArbiter_DiscardLateReply(t *testing.T) {
	a, cancel := newTestArbiter(t)
	defer cancel()
	defer a.Close()

	if _, e := a.Write([]byte("late\n")); e != nil {
		t.Fatal(e)
	}
	if _, err := a.ReadUntil(lf, 20*time.Millisecond); err == nil || !IsTimeout(err) {
		t.Fatalf("Expected a timeout, got %v", err)
	}
	//give the late reply time to show up, then throw it away
	<-time.After(200 * time.Millisecond)
	n, err := a.Discard(20*time.Millisecond, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != len("late reply\n") {
		t.Errorf("Expected the late reply to be dropped, dropped %d bytes", n)
	}

	if _, e := a.Write([]byte("abc\n")); e != nil {
		t.Fatal(e)
	}
	line, err := a.ReadUntil(lf, 500*time.Millisecond)
	if err != nil || !bytes.Equal(line, []byte("Rxd>3")) {
		t.Fatalf("After a discard the next reply should line up, got %q %v", line, err)
	}
}

func TestArbiter_DeadContext(t *testing.T) {
	a, cancel := newTestArbiter(t)
	cancel()
	if _, e := a.Write([]byte("abc\n")); e == nil {
		t.Error("Write on a dead context should fail")
	}
	if _, e := a.ReadUntil(lf, 10*time.Millisecond); e == nil || IsTimeout(e) {
		t.Errorf("ReadUntil on a dead context should fail with the context error, got %v", e)
	}
	a.Close()
}

func TestArbiter_EmptyTerminator(t *testing.T) {
	a, cancel := newTestArbiter(t)
	defer cancel()
	defer a.Close()
	if _, e := a.ReadUntil(nil, time.Millisecond); e == nil {
		t.Error("An empty terminator should be rejected")
	}
}

func TestArbiter_DiscardIsBounded(t *testing.T) {
	a, cancel := newTestArbiter(t)
	defer cancel()
	defer a.Close()

	if _, e := a.Write([]byte("chatter\n")); e != nil {
		t.Fatal(e)
	}
	limit := 100 * time.Millisecond
	start := time.Now()
	n, err := a.Discard(30*time.Millisecond, limit)
	took := time.Since(start)
	if err == nil || !IsTimeout(err) {
		t.Fatalf("A line that never goes quiet should time out, got %v", err)
	}
	if n == 0 {
		t.Error("Expected the chatter to be dropped")
	}
	if took < limit || took > limit+100*time.Millisecond {
		t.Errorf("Discard should give up right after its limit, took %v", took)
	}

	//a zero settle never waits, however busy the line
	start = time.Now()
	if _, err := a.Discard(0, 0); err != nil {
		t.Fatal(err)
	}
	if took := time.Since(start); took > 20*time.Millisecond {
		t.Errorf("Discard(0, 0) took %v", took)
	}
}
