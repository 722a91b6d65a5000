package gesture

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func TestFitLabels(t *testing.T) {
	enc, err := FitLabels([]string{"C", "A", "B", "A", "C", "D"})
	if err != nil {
		t.Fatalf("FitLabels() error = %v", err)
	}

	want := []string{"A", "B", "C", "D"}
	if got := enc.Classes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Classes() = %v, want %v", got, want)
	}
	if enc.Len() != 4 {
		t.Errorf("Len() = %d, want 4", enc.Len())
	}

	t.Run("empty labels", func(t *testing.T) {
		if _, err := FitLabels(nil); err == nil {
			t.Error("expected error for empty labels")
		}
	})

	t.Run("order independent of input order", func(t *testing.T) {
		other, _ := FitLabels([]string{"D", "C", "B", "A"})
		if !reflect.DeepEqual(other.Classes(), enc.Classes()) {
			t.Errorf("classes differ: %v vs %v", other.Classes(), enc.Classes())
		}
	})

	t.Run("classes copy is detached", func(t *testing.T) {
		c := enc.Classes()
		c[0] = "Z"
		if got, _ := enc.Decode(0); got != "A" {
			t.Errorf("Decode(0) = %q after mutating copy, want A", got)
		}
	})
}

func TestFitNumericLabels(t *testing.T) {
	var labels []string
	for i := 11; i >= 0; i-- {
		labels = append(labels, strconv.Itoa(i))
	}

	enc, err := FitNumericLabels(labels)
	if err != nil {
		t.Fatalf("FitNumericLabels() error = %v", err)
	}

	for i := 0; i < 12; i++ {
		got, err := enc.Decode(i)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", i, err)
		}
		if want := strconv.Itoa(i); got != want {
			t.Errorf("Decode(%d) = %q, want %q", i, got, want)
		}
	}

	t.Run("negative and wide values", func(t *testing.T) {
		enc, err := FitNumericLabels([]string{"18446744073709551615", "-10", "7", "-2", "0"})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"-10", "-2", "0", "7", "18446744073709551615"}
		if got := enc.Classes(); !reflect.DeepEqual(got, want) {
			t.Errorf("Classes() = %v, want %v", got, want)
		}
	})

	t.Run("rejects non integers", func(t *testing.T) {
		for _, bad := range []string{"A", "01", "-0", "1.5", ""} {
			if _, err := FitNumericLabels([]string{"1", bad}); err == nil {
				t.Errorf("FitNumericLabels accepted %q", bad)
			}
		}
	})
}

func TestLabelEncoder_RoundTrip(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "hello", "thanks", "A", "B"}
	enc, err := FitLabels(labels)
	if err != nil {
		t.Fatalf("FitLabels() error = %v", err)
	}

	for _, label := range labels {
		i, err := enc.Encode(label)
		if err != nil {
			t.Fatalf("Encode(%q) error = %v", label, err)
		}
		got, err := enc.Decode(i)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", i, err)
		}
		if got != label {
			t.Errorf("Decode(Encode(%q)) = %q", label, got)
		}
	}

	for i := 0; i < enc.Len(); i++ {
		label, _ := enc.Decode(i)
		if j, _ := enc.Encode(label); j != i {
			t.Errorf("Encode(Decode(%d)) = %d", i, j)
		}
	}
}

func TestLabelEncoder_Unknown(t *testing.T) {
	enc, _ := FitLabels([]string{"A", "B"})

	for _, i := range []int{-1, 2, 100} {
		if _, err := enc.Decode(i); !errors.Is(err, ErrUnknownClass) {
			t.Errorf("Decode(%d) error = %v, want ErrUnknownClass", i, err)
		}
	}
	if _, err := enc.Encode("Z"); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Encode(Z) error = %v, want ErrUnknownClass", err)
	}
}
