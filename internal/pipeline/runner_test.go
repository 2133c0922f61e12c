package pipeline_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"transcriber/internal/bundle"
	"transcriber/internal/config"
	"transcriber/internal/history"
	"transcriber/internal/media"
	"transcriber/internal/pipeline"
	"transcriber/internal/storage"
	"transcriber/internal/testsupport"
	"transcriber/internal/transcript"
)

type fakeTranscriber struct {
	result    transcript.Transcript
	err       error
	gotAudio  string
	gotLang   string
	gotWorkIn string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath, workDir, language string) (transcript.Transcript, error) {
	f.gotAudio = audioPath
	f.gotWorkIn = workDir
	f.gotLang = language
	if _, err := os.Stat(audioPath); err != nil {
		return transcript.Transcript{}, err
	}
	return f.result, f.err
}

func (f *fakeTranscriber) Model() string { return "small" }

type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _, dest string) error {
	f.calls++
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("RIFF"), 0o644)
}

type fakeProber struct {
	result media.ProbeResult
	err    error
}

func (f fakeProber) Probe(context.Context, string) (media.ProbeResult, error) {
	return f.result, f.err
}

type upperTranslator struct {
	target string
}

func (u *upperTranslator) Translate(_ context.Context, tr transcript.Transcript, target string) (transcript.Transcript, error) {
	u.target = target
	segs := make([]transcript.Segment, len(tr.Segments))
	for i, seg := range tr.Segments {
		seg.Text = strings.ToUpper(seg.Text)
		segs[i] = seg
	}
	out := tr.WithSegments(segs)
	out.Language = target
	return out, nil
}

type fakePublisher struct {
	jobID string
	files []string
}

func (f *fakePublisher) Publish(_ context.Context, jobID string, files []string) ([]storage.Object, error) {
	f.jobID = jobID
	f.files = files
	objects := make([]storage.Object, 0, len(files))
	for _, file := range files {
		objects = append(objects, storage.Object{Key: jobID + "/" + filepath.Base(file), URL: "https://files.example.test/" + filepath.Base(file)})
	}
	return objects, nil
}

func audioProbe() fakeProber {
	return fakeProber{result: media.ProbeResult{Streams: []media.ProbeStream{{CodecType: "audio"}}}}
}

func sampleTranscript() transcript.Transcript {
	return transcript.Transcript{
		Language: "en",
		Segments: []transcript.Segment{
			{Start: 0, End: 1.5, Text: "Hello"},
			{Start: 1.5, End: 3.0, Text: "world"},
		},
	}
}

func newRunner(t *testing.T, cfg *config.Config, opts ...pipeline.Option) *pipeline.Runner {
	t.Helper()
	runner, err := pipeline.New(cfg, nil, opts...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return runner
}

func TestRunAudioUploadWritesOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	tx := &fakeTranscriber{result: sampleTranscript()}
	ex := &fakeExtractor{}
	runner := newRunner(t, cfg,
		pipeline.WithTranscriber(tx),
		pipeline.WithExtractor(ex),
		pipeline.WithProber(audioProbe()),
		pipeline.WithHistory(store),
	)

	req := pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "talk.wav"))
	req.Language = "en"
	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.calls != 0 {
		t.Fatalf("audio upload should not be extracted, got %d calls", ex.calls)
	}
	if filepath.Base(tx.gotAudio) != "talk.wav" || tx.gotLang != "en" {
		t.Fatalf("unexpected transcribe call audio=%q lang=%q", tx.gotAudio, tx.gotLang)
	}

	wantOutputs := []string{
		filepath.Join(cfg.Paths.OutputDir, "output.txt"),
		filepath.Join(cfg.Paths.OutputDir, "output.srt"),
	}
	if !slices.Equal(result.Outputs, wantOutputs) {
		t.Fatalf("outputs = %v, want %v", result.Outputs, wantOutputs)
	}
	txt, err := os.ReadFile(wantOutputs[0])
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	if string(txt) != "Hello\nworld\n" {
		t.Fatalf("txt = %q", txt)
	}
	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != len(wantOutputs) {
		t.Fatalf("output dir should hold only transcripts, found %d entries", len(entries))
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.StagingDir, result.JobID)); !os.IsNotExist(err) {
		t.Fatalf("workspace should be removed, stat err = %v", err)
	}
	if result.WorkDir != "" {
		t.Fatalf("WorkDir should be empty when not kept, got %q", result.WorkDir)
	}

	job, err := store.Get(context.Background(), result.JobID)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if job.Status != history.StatusCompleted || job.Segments != 2 || job.Model != "small" {
		t.Fatalf("unexpected history row %+v", job)
	}
}

func TestRunVideoUploadExtractsAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tx := &fakeTranscriber{result: sampleTranscript()}
	ex := &fakeExtractor{}
	runner := newRunner(t, cfg,
		pipeline.WithTranscriber(tx),
		pipeline.WithExtractor(ex),
		pipeline.WithProber(audioProbe()),
	)

	req := pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "lecture.MKV"))
	req.KeepWorkDir = true
	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.calls != 1 {
		t.Fatalf("expected one extraction, got %d", ex.calls)
	}
	if filepath.Base(tx.gotAudio) != "audio.wav" {
		t.Fatalf("transcriber should get extracted audio, got %q", tx.gotAudio)
	}
	if result.WorkDir == "" {
		t.Fatal("expected kept WorkDir")
	}
	if _, err := os.Stat(filepath.Join(result.WorkDir, "audio", "audio.wav")); err != nil {
		t.Fatalf("kept workspace should hold extracted audio: %v", err)
	}
}

func TestRunTranslateBundleAndPublish(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBundle())
	tr := &upperTranslator{}
	pub := &fakePublisher{}
	runner := newRunner(t, cfg,
		pipeline.WithTranscriber(&fakeTranscriber{result: sampleTranscript()}),
		pipeline.WithExtractor(&fakeExtractor{}),
		pipeline.WithProber(audioProbe()),
		pipeline.WithTranslator(tr),
		pipeline.WithPublisher(pub),
	)

	req := pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "my talk.mp3"))
	req.TranslateTo = "de"
	req.Publish = true
	req.Formats = []string{"srt"}
	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tr.target != "de" || result.Transcript.Language != "de" {
		t.Fatalf("translation not applied: target=%q lang=%q", tr.target, result.Transcript.Language)
	}
	srt, err := os.ReadFile(filepath.Join(cfg.Paths.OutputDir, "output.srt"))
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.Contains(string(srt), "HELLO") {
		t.Fatalf("srt should hold translated text:\n%s", srt)
	}

	if !strings.HasPrefix(filepath.Base(result.BundlePath), "my talk-") || filepath.Ext(result.BundlePath) != ".zip" {
		t.Fatalf("unexpected bundle path %q", result.BundlePath)
	}
	manifest, err := bundle.ReadManifest(result.BundlePath)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.JobID != result.JobID || manifest.TargetLanguage != "de" || manifest.Segments != 2 || len(manifest.Files) != 1 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}

	if pub.jobID != result.JobID || len(pub.files) != 2 || pub.files[1] != result.BundlePath {
		t.Fatalf("unexpected publish call job=%q files=%v", pub.jobID, pub.files)
	}
	if len(result.Published) != 2 {
		t.Fatalf("expected 2 published objects, got %d", len(result.Published))
	}
}

func TestRunRejectsBeforeStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newRunner(t, cfg, pipeline.WithTranscriber(&fakeTranscriber{}), pipeline.WithProber(nil))

	cases := []struct {
		name   string
		mutate func(*pipeline.Request)
		want   error
	}{
		{"unsupported upload", func(r *pipeline.Request) { r.Source = testsupport.WriteUpload(t, "notes.pdf") }, pipeline.ErrUnsupportedUpload},
		{"translation unconfigured", func(r *pipeline.Request) { r.TranslateTo = "fr" }, pipeline.ErrNotConfigured},
		{"publish unconfigured", func(r *pipeline.Request) { r.Publish = true }, pipeline.ErrNotConfigured},
		{"vtt format", func(r *pipeline.Request) { r.Formats = []string{"vtt"} }, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "talk.wav"))
			tc.mutate(&req)
			_, err := runner.Run(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if pipeline.FailedStage(err) != pipeline.StageStage {
				t.Fatalf("stage = %q, want %q", pipeline.FailedStage(err), pipeline.StageStage)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	entries, _ := os.ReadDir(cfg.Paths.StagingDir)
	if len(entries) != 0 {
		t.Fatalf("rejected requests should not create workspaces, found %d", len(entries))
	}
}

func TestRunTranscribeFailureRecordsStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	runner := newRunner(t, cfg,
		pipeline.WithTranscriber(&fakeTranscriber{err: errors.New("cuda out of memory")}),
		pipeline.WithProber(audioProbe()),
		pipeline.WithHistory(store),
	)

	_, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "talk.wav")))
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageTranscribe {
		t.Fatalf("expected transcribe StageError, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Paths.OutputDir, "output.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("failed job should not write outputs, stat err = %v", statErr)
	}

	jobs, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != history.StatusFailed || jobs[0].FailedStage != pipeline.StageTranscribe {
		t.Fatalf("unexpected history %+v", jobs)
	}
	if !strings.Contains(jobs[0].ErrorMessage, "cuda out of memory") {
		t.Fatalf("error message not recorded: %q", jobs[0].ErrorMessage)
	}
}

func TestRunAudioStreamCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	silent := newRunner(t, cfg,
		pipeline.WithTranscriber(&fakeTranscriber{result: sampleTranscript()}),
		pipeline.WithProber(fakeProber{result: media.ProbeResult{Streams: []media.ProbeStream{{CodecType: "video"}}}}),
	)
	_, err := silent.Run(context.Background(), pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "clip.mp4")))
	if !errors.Is(err, pipeline.ErrNoAudio) || pipeline.FailedStage(err) != pipeline.StageExtract {
		t.Fatalf("expected ErrNoAudio in extract stage, got %v", err)
	}

	missing := newRunner(t, cfg,
		pipeline.WithTranscriber(&fakeTranscriber{result: sampleTranscript()}),
		pipeline.WithProber(fakeProber{err: &exec.Error{Name: "ffprobe", Err: exec.ErrNotFound}}),
	)
	if _, err := missing.Run(context.Background(), pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "talk.wav"))); err != nil {
		t.Fatalf("missing ffprobe should only skip the stream check, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newRunner(t, cfg, pipeline.WithTranscriber(&fakeTranscriber{result: sampleTranscript()}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.Run(ctx, pipeline.RequestFromConfig(cfg, testsupport.WriteUpload(t, "talk.wav")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
