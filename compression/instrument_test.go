package compression

import (
	"errors"
	"testing"
	"time"
)

func TestMeasure(t *testing.T) {
	var (
		gotName string
		gotPath string
		gotErr  error
		calls   int
	)
	obs := func(name, path string, elapsed time.Duration, err error) {
		calls++
		gotName, gotPath, gotErr = name, path, err
		if elapsed < 0 {
			t.Errorf("negative elapsed time %v", elapsed)
		}
	}

	failing := errors.New("boom")
	op := Measure("decode", func(path string) (int, error) {
		return 7, failing
	}, obs)

	res, err := op("input.hzip")
	if res != 7 || !errors.Is(err, failing) {
		t.Errorf("expected wrapped result (7, boom), got (%d, %v)", res, err)
	}
	if calls != 1 || gotName != "decode" || gotPath != "input.hzip" || !errors.Is(gotErr, failing) {
		t.Errorf("observer saw calls=%d name=%q path=%q err=%v", calls, gotName, gotPath, gotErr)
	}
}

func TestMeasure_DefaultObserver(t *testing.T) {
	path := writeTempFile(t, "measured")
	encode := Measure("encode", EncodeFile, nil)
	if _, err := encode(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
