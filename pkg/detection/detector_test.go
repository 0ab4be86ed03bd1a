package detection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/menta2k/agentic-detect/pkg/types"
)

// fakeClient returns canned batches or errors keyed by the first prompt of
// each call and records the calls it receives.
type fakeClient struct {
	batches map[string]types.DetectionBatch
	errs    map[string]error
	calls   [][]string
}

func (f *fakeClient) Detect(ctx context.Context, image []byte, prompts []string) (types.DetectionBatch, error) {
	f.calls = append(f.calls, append([]string(nil), prompts...))
	key := prompts[0]
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.batches[key], nil
}

func TestParsePrompts(t *testing.T) {
	prompts, err := ParsePrompts(" green shoe , gaming chair ,, ")
	if err != nil {
		t.Fatalf("ParsePrompts failed: %v", err)
	}
	if len(prompts) != 2 || prompts[0] != "green shoe" || prompts[1] != "gaming chair" {
		t.Fatalf("unexpected prompts: %v", prompts)
	}
}

func TestParsePromptsEmpty(t *testing.T) {
	for _, text := range []string{"", "  ", ",,,"} {
		if _, err := ParsePrompts(text); !errors.Is(err, types.ErrMissingPrompt) {
			t.Errorf("text %q: expected ErrMissingPrompt, got %v", text, err)
		}
	}
}

func TestParsePromptsTooMany(t *testing.T) {
	if _, err := ParsePrompts("a, b, c, d"); !errors.Is(err, types.ErrTooManyPrompts) {
		t.Errorf("expected ErrTooManyPrompts, got %v", err)
	}
}

func TestDetectPerPromptConcatenatesAndSorts(t *testing.T) {
	fake := &fakeClient{batches: map[string]types.DetectionBatch{
		"cat": {{Label: "cat", Score: 0.3, BoundingBox: []float64{1, 1, 2, 2}}},
		"dog": {
			{Label: "dog", Score: 0.9, BoundingBox: []float64{3, 3, 4, 4}},
			{Label: "dog", Score: 0.5, BoundingBox: []float64{5, 5, 6, 6}},
		},
	}}
	d := NewDetector(fake)

	res, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected one call per prompt, got %d calls", len(fake.calls))
	}
	for _, call := range fake.calls {
		if len(call) != 1 {
			t.Errorf("per-prompt strategy must send a single prompt per call, sent %v", call)
		}
	}

	want := []float64{0.9, 0.5, 0.3}
	if len(res.Batch) != len(want) {
		t.Fatalf("expected %d detections, got %d", len(want), len(res.Batch))
	}
	for i, score := range want {
		if res.Batch[i].Score != score {
			t.Errorf("position %d: expected score %v, got %v", i, score, res.Batch[i].Score)
		}
	}
}

func TestDetectPerPromptPartialFailure(t *testing.T) {
	remoteErr := &types.RemoteCallError{Prompt: "cat", Status: 500, Err: errors.New("boom")}
	fake := &fakeClient{
		batches: map[string]types.DetectionBatch{
			"dog": {{Label: "dog", Score: 0.8, BoundingBox: []float64{1, 1, 2, 2}}},
		},
		errs: map[string]error{"cat": remoteErr},
	}
	d := NewDetector(fake)

	res, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("a single failed prompt must not fail the batch: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("failure must not cancel sibling prompts; got %d calls", len(fake.calls))
	}
	if len(res.Batch) != 1 || res.Batch[0].Label != "dog" {
		t.Fatalf("expected the surviving prompt's detections, got %+v", res.Batch)
	}
	if !errors.Is(res.Failures["cat"], remoteErr) {
		t.Errorf("expected the failure recorded for its prompt, got %v", res.Failures)
	}
}

func TestDetectPerPromptAllFailed(t *testing.T) {
	fake := &fakeClient{errs: map[string]error{
		"cat": errors.New("a"),
		"dog": errors.New("b"),
	}}
	d := NewDetector(fake)

	res, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !res.Empty() {
		t.Error("expected an empty result")
	}
	if len(res.Failures) != 2 {
		t.Errorf("expected both failures recorded, got %d", len(res.Failures))
	}
}

func TestDetectBatchedSingleCall(t *testing.T) {
	fake := &fakeClient{batches: map[string]types.DetectionBatch{
		"cat": {
			{Label: "cat", Score: 0.4, BoundingBox: []float64{1, 1, 2, 2}},
			{Label: "dog", Score: 0.6, BoundingBox: []float64{3, 3, 4, 4}},
		},
	}}
	d := NewDetectorWithStrategy(fake, StrategyBatched)

	res, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(fake.calls) != 1 || len(fake.calls[0]) != 2 {
		t.Fatalf("batched strategy must submit all prompts in one call, got %v", fake.calls)
	}
	if res.Batch[0].Score != 0.6 {
		t.Errorf("expected batch sorted by descending score, got %+v", res.Batch)
	}
}

func TestDetectBatchedFailureFailsWhole(t *testing.T) {
	remoteErr := &types.RemoteCallError{Status: 502, Err: errors.New("bad gateway")}
	fake := &fakeClient{errs: map[string]error{"cat": remoteErr}}
	d := NewDetectorWithStrategy(fake, StrategyBatched)

	_, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if !errors.Is(err, remoteErr) {
		t.Fatalf("expected the batched failure returned, got %v", err)
	}
}

func TestDetectMissingInputs(t *testing.T) {
	d := NewDetector(&fakeClient{})

	if _, err := d.Detect(context.Background(), nil, []string{"cat"}); !errors.Is(err, types.ErrMissingImage) {
		t.Errorf("expected ErrMissingImage, got %v", err)
	}
	if _, err := d.Detect(context.Background(), []byte("img"), nil); !errors.Is(err, types.ErrMissingPrompt) {
		t.Errorf("expected ErrMissingPrompt, got %v", err)
	}
	if _, err := d.Detect(context.Background(), []byte("img"), []string{"a", "b", "c", "d"}); !errors.Is(err, types.ErrTooManyPrompts) {
		t.Errorf("expected ErrTooManyPrompts, got %v", err)
	}
}

func TestDetectAssignsColors(t *testing.T) {
	d := NewDetector(&fakeClient{})

	res, err := d.Detect(context.Background(), []byte("img"), []string{"cat", "dog"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res.Colors["cat"] != types.Palette[0] || res.Colors["dog"] != types.Palette[1] {
		t.Errorf("colors not assigned in submission order: %v", res.Colors)
	}
}

func TestSummaryText(t *testing.T) {
	batch := types.DetectionBatch{
		{Label: "cat", Score: 0.9, BoundingBox: []float64{10, 10, 50, 50}},
		{Label: "dog", Score: 0.5, BoundingBox: []float64{1, 2, 3, 4}},
	}

	text := SummaryText(batch)
	if !strings.HasPrefix(text, "Objects Detected:\n") {
		t.Errorf("unexpected summary header: %q", text)
	}
	if !strings.Contains(text, "- Label: cat, Score: 0.90, Box: [10 10 50 50]") {
		t.Errorf("missing cat row in %q", text)
	}
	if !strings.Contains(text, "- Label: dog, Score: 0.50, Box: [1 2 3 4]") {
		t.Errorf("missing dog row in %q", text)
	}
}

func TestSummaryTextEmpty(t *testing.T) {
	if got := SummaryText(nil); got != "No objects detected for the given prompts." {
		t.Errorf("unexpected empty summary: %q", got)
	}
}

func TestBuildBundle(t *testing.T) {
	batch := types.DetectionBatch{
		{Label: "cat", Score: 0.9, BoundingBox: []float64{10, 10, 50, 50}},
	}

	bundle := BuildBundle([]byte("jpeg-bytes"), batch)
	if bundle.Empty() {
		t.Fatal("bundle should not be empty")
	}
	if string(bundle.AnnotatedImage) != "jpeg-bytes" {
		t.Error("annotated image bytes not carried through")
	}
	if len(bundle.Rows) != 1 || bundle.Rows[0].Label != "cat" {
		t.Errorf("unexpected rows: %+v", bundle.Rows)
	}
}
