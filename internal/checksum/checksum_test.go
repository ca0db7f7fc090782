package checksum

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

// sha256("abc")
const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestReader(t *testing.T) {
	got, err := Reader(strings.NewReader("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if got != abc {
		t.Errorf("Reader = %q, want %q", got, abc)
	}
}

func TestReader_Error(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Reader(iotest.ErrReader(boom)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
