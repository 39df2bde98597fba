package prompt

import "testing"

func TestStatic_withAnswer(t *testing.T) {
	answer := "hello"
	p := Static{Answer: &answer}
	reply := <-p.Prompt(Request{Message: "?"})
	if !reply.OK || reply.Value != "hello" {
		t.Fatalf("got %+v", reply)
	}
}

func TestStatic_noAnswer(t *testing.T) {
	p := Static{}
	reply := <-p.Prompt(Request{Message: "?"})
	if reply.OK {
		t.Fatalf("expected no answer, got %+v", reply)
	}
}
