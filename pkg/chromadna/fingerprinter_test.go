package chromadna

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/audio"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/fingerprint"
	"github.com/himanishpuri/ChromaDNA/pkg/logger"
	"github.com/himanishpuri/ChromaDNA/pkg/utils"
)

var updateReference = flag.Bool("update", false, "rewrite the recorded reference fingerprints in testdata")

func TestNewFingerprinterErrors(t *testing.T) {
	if _, err := NewFingerprinter(Algorithm(9)); !errors.Is(err, fingerprint.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := NewFingerprinter(AlgorithmDefault, WithFFTBackend("fftw")); !errors.Is(err, fingerprint.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewFingerprinter(AlgorithmDefault, WithSilenceThreshold(40000)); err == nil {
		t.Error("Expected error for out of range silence threshold")
	}
}

func TestFingerprinterNotStarted(t *testing.T) {
	f := newTestFingerprinter(t, AlgorithmDefault, WithLogger(logger.NewNop()))

	if err := f.Feed([]int16{1, 2}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Feed: expected ErrNotStarted, got %v", err)
	}
	if err := f.Finish(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Finish: expected ErrNotStarted, got %v", err)
	}
	if _, err := f.Fingerprint(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Fingerprint: expected ErrNotStarted, got %v", err)
	}

	if err := f.Start(44100, 0); !errors.Is(err, audio.ErrInvalidChannels) {
		t.Errorf("Start: expected ErrInvalidChannels, got %v", err)
	}
	if err := f.Feed([]int16{1, 2}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Feed after failed Start: expected ErrNotStarted, got %v", err)
	}
	if err := f.Start(800, 1); !errors.Is(err, audio.ErrSampleRateTooLow) {
		t.Errorf("Start: expected ErrSampleRateTooLow, got %v", err)
	}
}

func TestFingerprinterSetOption(t *testing.T) {
	f := newTestFingerprinter(t, AlgorithmDefault)

	tests := []struct {
		name    string
		value   int
		wantErr error
	}{
		{OptionSilenceThreshold, 0, nil},
		{OptionSilenceThreshold, 32767, nil},
		{OptionSilenceThreshold, -1, fingerprint.ErrInvalidConfiguration},
		{OptionSilenceThreshold, 32768, fingerprint.ErrInvalidConfiguration},
		{"frame_size", 10, ErrUnknownOption},
	}
	for _, tt := range tests {
		err := f.SetOption(tt.name, tt.value)
		if tt.wantErr == nil && err != nil {
			t.Errorf("SetOption(%s, %d): unexpected error %v", tt.name, tt.value, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("SetOption(%s, %d) = %v, want %v", tt.name, tt.value, err, tt.wantErr)
		}
	}
}

func TestFingerprinterTiming(t *testing.T) {
	f := newTestFingerprinter(t, AlgorithmTest2)
	if f.Algorithm() != AlgorithmTest2 {
		t.Errorf("Algorithm = %v", f.Algorithm())
	}
	if want := time.Duration(1365) * time.Second / 11025; f.ItemDuration() != want {
		t.Errorf("ItemDuration = %v, want %v", f.ItemDuration(), want)
	}
	if want := time.Duration(28666) * time.Second / 11025; f.Delay() != want {
		t.Errorf("Delay = %v, want %v", f.Delay(), want)
	}
}

func TestFingerprinterDecimation(t *testing.T) {
	plain := newTestFingerprinter(t, AlgorithmTest2)
	halved := newTestFingerprinter(t, AlgorithmTest2, WithDecimation(2))
	if halved.ItemDuration() != 2*plain.ItemDuration() {
		t.Errorf("ItemDuration = %v, want %v", halved.ItemDuration(), 2*plain.ItemDuration())
	}
	if halved.Config().Decimation() != 2 {
		t.Errorf("Decimation = %d, want 2", halved.Config().Decimation())
	}

	samples := synthMusic(10, 11025, 1, 4)
	full := fingerprintSamples(t, plain, samples, 11025, 1)
	fewer := fingerprintSamples(t, halved, samples, 11025, 1)
	if len(fewer) == 0 || len(fewer) >= len(full) {
		t.Errorf("decimated fingerprint has %d items, plain %d", len(fewer), len(full))
	}

	if _, err := NewFingerprinter(AlgorithmTest2, WithDecimation(-1)); !errors.Is(err, fingerprint.ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewService(WithDecimation(-1)); err == nil {
		t.Error("NewService accepted a negative decimation")
	}
}

func TestFingerprinterSilence(t *testing.T) {
	silence := make([]int16, 44100*2*5)

	raw := fingerprintSamples(t, newTestFingerprinter(t, AlgorithmTest2), silence, 44100, 2)
	for i, x := range raw {
		if x != raw[0] {
			t.Fatalf("subfingerprint %d = %08x differs from %08x on silent input", i, x, raw[0])
		}
	}
	t.Logf("Silence gave %d identical subfingerprints", len(raw))

	trimmed := fingerprintSamples(t, newTestFingerprinter(t, AlgorithmTest4), silence, 44100, 2)
	if len(trimmed) != 0 {
		t.Errorf("Expected empty fingerprint with silence removal, got %d items", len(trimmed))
	}

	f := newTestFingerprinter(t, AlgorithmTest2)
	if err := f.SetOption(OptionSilenceThreshold, 100); err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}
	if got := fingerprintSamples(t, f, silence, 44100, 2); len(got) != 0 {
		t.Errorf("Expected empty fingerprint after enabling trimming, got %d items", len(got))
	}
}

func TestFingerprinterLeadingSilenceTrimmed(t *testing.T) {
	music := synthMusic(6, 11025, 1, 3)
	short := append(make([]int16, 11025), music...)
	long := append(make([]int16, 11025*3), music...)

	want := fingerprintSamples(t, newTestFingerprinter(t, AlgorithmTest4), short, 11025, 1)
	got := fingerprintSamples(t, newTestFingerprinter(t, AlgorithmTest4), long, 11025, 1)
	if len(want) == 0 || !slices.Equal(got, want) {
		t.Errorf("leading silence length changed the fingerprint: %d vs %d items", len(got), len(want))
	}
}

func TestFingerprinterChunking(t *testing.T) {
	samples := stereoMusic(8, 44100, 1, 7)
	f := newTestFingerprinter(t, AlgorithmDefault)
	want := fingerprintSamples(t, f, samples, 44100, 2)
	if len(want) == 0 {
		t.Fatal("Expected a non-empty fingerprint")
	}

	for _, chunk := range []int{1, 2, 3, 1001, 1002, 4097, 8820, 65536} {
		if err := f.Start(44100, 2); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		for start := 0; start < len(samples); start += chunk {
			if err := f.Feed(samples[start:min(start+chunk, len(samples))]); err != nil {
				t.Fatalf("Feed failed: %v", err)
			}
		}
		if err := f.Finish(); err != nil {
			t.Fatalf("Finish failed: %v", err)
		}
		if got := f.RawFingerprint(); !slices.Equal(got, want) {
			t.Errorf("chunk %d: fingerprint differs (%d vs %d items)", chunk, len(got), len(want))
		}
	}
}

func TestFingerprinterClearFingerprint(t *testing.T) {
	samples := synthMusic(8, 11025, 1, 2)
	f := newTestFingerprinter(t, AlgorithmDefault)
	full := fingerprintSamples(t, f, samples, 11025, 1)

	if err := f.Start(11025, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	half := len(samples) / 2
	f.Feed(samples[:half])
	f.Finish()
	first := f.RawFingerprint()
	f.ClearFingerprint()
	if len(f.RawFingerprint()) != 0 {
		t.Fatal("ClearFingerprint left items behind")
	}
	f.Feed(samples[half:])
	f.Finish()
	second := f.RawFingerprint()

	if joined := append(first, second...); !slices.Equal(joined, full) {
		t.Errorf("split fingerprints do not add up: %d+%d vs %d items", len(first), len(second), len(full))
	}
}

func TestFingerprinterEncodedForm(t *testing.T) {
	f := newTestFingerprinter(t, AlgorithmTest3)
	raw := fingerprintSamples(t, f, synthMusic(4, 22050, 1, 5), 22050, 1)

	encoded, err := f.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	decoded, alg, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if alg != AlgorithmTest3 || !slices.Equal(decoded, raw) {
		t.Errorf("decoded %d items with %v, want %d items with test3", len(decoded), alg, len(raw))
	}
	if f.Hash() != Hash(raw) {
		t.Error("Hash differs from hash of the raw fingerprint")
	}
}

func TestFingerprintBackendsAgree(t *testing.T) {
	samples := synthMusic(5, 44100, 1, 8)
	a, err := FingerprintPCM(context.Background(), &audio.PCM{Samples: samples, SampleRate: 44100, Channels: 1}, AlgorithmDefault)
	if err != nil {
		t.Fatalf("FingerprintPCM failed: %v", err)
	}
	b, err := FingerprintPCM(context.Background(), &audio.PCM{Samples: samples, SampleRate: 44100, Channels: 1}, AlgorithmDefault,
		WithFFTBackend(fingerprint.FFTGonum))
	if err != nil {
		t.Fatalf("FingerprintPCM failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	segments, err := Match(a, b, 1)
	if err != nil || len(segments) == 0 {
		t.Fatalf("backends disagree: %v", err)
	}
}

func TestFingerprintPCMCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pcm := &audio.PCM{Samples: synthMusic(1, 11025, 1, 1), SampleRate: 11025, Channels: 1}
	if _, err := FingerprintPCM(ctx, pcm, AlgorithmDefault); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestCircularShiftMatch(t *testing.T) {
	const (
		rate  = 44100
		items = 20
		k     = 5460 * items // one item is 1365 samples at 11025 Hz
	)
	a := synthMusic(30, rate, 1, 42)
	b := append(slices.Clone(a[len(a)-k:]), a[:len(a)-k]...)

	f := newTestFingerprinter(t, AlgorithmDefault)
	fpA := fingerprintSamples(t, f, a, rate, 1)
	fpB := fingerprintSamples(t, f, b, rate, 1)

	segments, err := Match(fpA, fpB, 10)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("Expected at least one matching segment")
	}

	matched := 0
	for _, seg := range segments {
		if d := seg.PosB - seg.PosA; d < items-1 || d > items+1 {
			t.Errorf("segment offset %d, want %d", d, items)
		}
		if seg.Score >= 10 {
			t.Errorf("segment score %.2f not below threshold", seg.Score)
		}
		matched += seg.Duration
	}
	if matched < len(fpA)/2 {
		t.Errorf("matched only %d of %d items", matched, len(fpA))
	}
	t.Logf("%d segments, %d/%d items matched", len(segments), matched, len(fpA))
}

// Fixture convention: real recordings live in testdata and are not checked in.
func getTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("Test file not found: %s", path)
	}
	return path
}

// The reference file holds the encoded fingerprint on the first line and the
// decimal hash on the second.
func readReference(t *testing.T, path string) (string, uint32) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open reference: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		t.Fatalf("reference %s needs fingerprint and hash lines", path)
	}
	hash, err := strconv.ParseUint(lines[1], 10, 32)
	if err != nil {
		t.Fatalf("bad reference hash: %v", err)
	}
	return lines[0], uint32(hash)
}

func TestRegressionReference(t *testing.T) {
	wavPath := getTestFile(t, "test_stereo_44100.wav")
	wantFP, wantHash := readReference(t, getTestFile(t, "test_stereo_44100.txt"))

	pcm, err := audio.ReadWAV(wavPath)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	f := newTestFingerprinter(t, AlgorithmTest2)
	if _, err := f.Process(context.Background(), pcm, 0); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	got, _ := f.Fingerprint()
	if got != wantFP {
		t.Errorf("fingerprint differs from reference:\n got %s\nwant %s", got, wantFP)
	}
	if f.Hash() != wantHash {
		t.Errorf("Hash = %d, want %d", f.Hash(), wantHash)
	}
}

// With an all-zero image every classifier sees 0, so the item is the gray
// coded bucket of 0 for each classifier threshold set.
func TestSilentStereoReference(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want uint32
	}{
		{AlgorithmTest1, 0x15EFD56B},
		{AlgorithmTest2, 0x256DF977},
	}
	silence := make([]int16, 44100*2*5)

	for _, tt := range tests {
		f := newTestFingerprinter(t, tt.alg)
		raw := fingerprintSamples(t, f, silence, 44100, 2)
		if len(raw) == 0 {
			t.Fatalf("%v: empty fingerprint", tt.alg)
		}
		for i, x := range raw {
			if x != tt.want {
				t.Fatalf("%v: item %d = %08x, want %08x", tt.alg, i, x, tt.want)
			}
		}
		if f.Hash() != tt.want {
			t.Errorf("%v: Hash = %08x, want %08x", tt.alg, f.Hash(), tt.want)
		}

		encoded, _ := f.Fingerprint()
		decoded, alg, err := Decode(encoded)
		if err != nil || alg != tt.alg || !slices.Equal(decoded, raw) {
			t.Errorf("%v: encoded form does not decode back: %v", tt.alg, err)
		}
	}
}

// The synthetic clip is recorded once into testdata and compared on every
// later run. Run with -update after an intended output change.
func TestSyntheticReference(t *testing.T) {
	path := filepath.Join("testdata", "synth_stereo_44100_test2.txt")
	pcm := &audio.PCM{Samples: stereoMusic(10, 44100, 11, 29), SampleRate: 44100, Channels: 2}

	f := newTestFingerprinter(t, AlgorithmTest2)
	if _, err := f.Process(context.Background(), pcm, 0); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	got, _ := f.Fingerprint()
	if got == "" || len(f.RawFingerprint()) == 0 {
		t.Fatal("Expected a non-empty fingerprint")
	}

	if *updateReference || !utils.FileExists(path) {
		if err := utils.EnsureParentDir(path); err != nil {
			t.Fatalf("Failed to create testdata: %v", err)
		}
		content := fmt.Sprintf("%s\n%d\n", got, f.Hash())
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to record reference: %v", err)
		}
		t.Logf("Recorded reference %s (%d items, hash %08x)", path, len(f.RawFingerprint()), f.Hash())
		return
	}

	wantFP, wantHash := readReference(t, path)
	if got != wantFP {
		t.Errorf("fingerprint differs from recorded reference:\n got %s\nwant %s", got, wantFP)
	}
	if f.Hash() != wantHash {
		t.Errorf("Hash = %d, want %d", f.Hash(), wantHash)
	}
}
