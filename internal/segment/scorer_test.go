package segment

import (
	"context"
	"errors"
	"testing"
)

func TestChainScoreFirstUsableWins(t *testing.T) {
	calls := []string{}
	record := func(name string, vec []float64, err error) Scorer {
		return FuncScorer{
			ScorerName: name,
			Fn: func(ctx context.Context, path string, seconds int) ([]float64, error) {
				calls = append(calls, name)
				return vec, err
			},
		}
	}

	scorers := []Scorer{
		record("broken", nil, errors.New("no backend")),
		record("empty", []float64{}, nil),
		record("good", []float64{0.9, 0.8}, nil),
		record("unreached", []float64{0.1}, nil),
	}

	vec := ChainScore(context.Background(), scorers, "audio.wav", 2, nil)
	if len(vec) != 2 || vec[0] != 0.9 {
		t.Fatalf("expected vector from third stage, got %+v", vec)
	}
	want := []string{"broken", "empty", "good"}
	if len(calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, calls)
		}
	}
}

func TestChainScoreAllFail(t *testing.T) {
	scorers := []Scorer{
		FuncScorer{ScorerName: "nil-fn"},
		FuncScorer{ScorerName: "erroring", Fn: func(ctx context.Context, path string, seconds int) ([]float64, error) {
			return nil, ErrScorerUnavailable
		}},
	}
	if vec := ChainScore(context.Background(), scorers, "audio.wav", 10, nil); vec != nil {
		t.Fatalf("expected nil vector when every stage fails, got %+v", vec)
	}
}

func TestFuncScorerNilFn(t *testing.T) {
	_, err := FuncScorer{ScorerName: "custom"}.TryScore(context.Background(), "audio.wav", 1)
	if !errors.Is(err, ErrScorerUnavailable) {
		t.Fatalf("expected ErrScorerUnavailable, got %v", err)
	}
}

func TestBinaryActivity(t *testing.T) {
	tests := []struct {
		voiced, counted int
		want            float64
	}{
		{25, 50, 1.0},
		{24, 50, 0.0},
		{50, 50, 1.0},
		{0, 50, 0.0},
		{0, 0, 0.0},
	}
	for _, tt := range tests {
		if got := binaryActivity(tt.voiced, tt.counted); got != tt.want {
			t.Fatalf("binaryActivity(%d, %d) = %f, want %f", tt.voiced, tt.counted, got, tt.want)
		}
	}
}

func TestVADScorerWithoutTools(t *testing.T) {
	_, err := VADScorer{}.TryScore(context.Background(), "audio.wav", 1)
	if !errors.Is(err, ErrScorerUnavailable) {
		t.Fatalf("expected ErrScorerUnavailable, got %v", err)
	}
}

func TestVocalEnergyScorerWithoutSeparator(t *testing.T) {
	_, err := VocalEnergyScorer{}.TryScore(context.Background(), "audio.wav", 1)
	if !errors.Is(err, ErrScorerUnavailable) {
		t.Fatalf("expected ErrScorerUnavailable, got %v", err)
	}
}
