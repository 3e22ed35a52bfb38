// Package pipeline wires the ring buffer, chunker, STT engine, speaker
// engine, hallucination filter, overlap deduplicator and markdown writer
// into the running "record" command, following a capture /
// chunk-and-transcribe / persist / optional UDP-receiver thread topology
// with a goroutine-per-concern layout and a single shutdown signal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/erikh/hoover/internal/audio"
	"github.com/erikh/hoover/internal/chunk"
	"github.com/erikh/hoover/internal/config"
	"github.com/erikh/hoover/internal/dedup"
	"github.com/erikh/hoover/internal/firewall"
	"github.com/erikh/hoover/internal/hallucination"
	"github.com/erikh/hoover/internal/herr"
	"github.com/erikh/hoover/internal/markdown"
	"github.com/erikh/hoover/internal/monitor"
	"github.com/erikh/hoover/internal/ring"
	"github.com/erikh/hoover/internal/speaker"
	"github.com/erikh/hoover/internal/stt"
	"github.com/erikh/hoover/internal/transport"
	"github.com/erikh/hoover/internal/vad"
	"github.com/erikh/hoover/internal/vcs"
)

// joinDeadline bounds how long shutdown waits for any single worker
// goroutine before logging a warning and detaching from it rather than
// hanging forever, bounding shutdown to a fixed per-thread join deadline.
const joinDeadline = 30 * time.Second

// Pipeline owns every stage of the recording pipeline for one session.
type Pipeline struct {
	cfg *config.Config

	sessionID string
	ring      *ring.Buffer
	chunker   *chunk.Chunker
	stt       stt.Engine
	halluc    *hallucination.Filter
	dedup     *dedup.Deduplicator
	writer    *markdown.Writer
	vcsHook   vcs.Hook

	speakerStore     *speaker.Store
	speakerExtractor *speaker.Extractor
	vadDetector      *vad.Detector

	capture       *audio.Capture
	monitorServer *monitor.Server
	udpReceiver   *transport.Receiver
}

// New assembles a Pipeline from a resolved Config. The STT engine and
// journal writer are load-bearing: their construction failures are fatal.
// Speaker identification and the UDP subsystem are not: a failure there
// is logged and the corresponding stage is left disabled so the rest of
// the pipeline can still start.
func New(cfg *config.Config) (*Pipeline, error) {
	sttEngine, err := stt.New(&cfg.Stt)
	if err != nil {
		return nil, herr.Wrap(herr.KindSttFatal, "pipeline.New", fmt.Errorf("failed to build stt engine: %w", err))
	}

	writer, err := markdown.New(cfg.Output.JournalDir, cfg.Output.IncludeSpeaker)
	if err != nil {
		return nil, herr.Wrap(herr.KindWriterIo, "pipeline.New", fmt.Errorf("failed to build journal writer: %w", err))
	}

	p := &Pipeline{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		ring:      ring.New(cfg.Audio.RingCapacity),
		chunker:   chunk.New(cfg.Audio.SampleRate, cfg.Audio.ChunkSeconds, cfg.Audio.OverlapSecs, cfg.Audio.MinFlushSecs),
		stt:       sttEngine,
		halluc:    hallucination.New(0),
		dedup:     dedup.New(),
		writer:    writer,
		vcsHook:   vcs.New(&cfg.Vcs, cfg.Output.JournalDir),
	}

	if cfg.Speaker.Enabled {
		store, err := speaker.NewStore(config.ExpandPath(cfg.Speaker.ProfilesDir))
		if err != nil {
			slog.Error("failed to open speaker profile store, disabling speaker identification", "error", err)
		} else {
			extractor, err := speaker.NewExtractor(&cfg.Speaker)
			if err != nil {
				slog.Error("failed to load speaker model, disabling speaker identification", "error", err)
				store.Close()
			} else {
				p.speakerStore = store
				p.speakerExtractor = extractor
			}
		}
	}

	if cfg.Vad.Enabled {
		detector, err := vad.New(cfg.Vad.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: failed to build vad detector: %w", err)
		}
		p.vadDetector = detector
	}

	if cfg.Monitor.Enabled {
		p.monitorServer = monitor.New(cfg.Monitor.Addr)
	}

	if cfg.Udp.Enabled {
		receiver, err := newUdpReceiver(cfg, p.ring)
		if err != nil {
			slog.Error("failed to start udp subsystem, main recording continues without it", "error", err)
		} else {
			p.udpReceiver = receiver
		}
	}

	return p, nil
}

// newUdpReceiver builds the firewall backend, loads the frame key, and
// binds a Receiver, wiring incoming audio straight into buf. Any failure
// here is returned to the caller to log and treat as non-fatal: local
// capture and transcription must keep working with the UDP subsystem
// disabled.
func newUdpReceiver(cfg *config.Config, buf *ring.Buffer) (*transport.Receiver, error) {
	fw, err := firewall.New(&cfg.Firewall)
	if err != nil {
		return nil, fmt.Errorf("failed to build firewall backend: %w", err)
	}
	key, err := loadUdpKey(cfg.Udp.KeyFile)
	if err != nil {
		return nil, err
	}
	receiver, err := transport.NewReceiver(
		cfg.Udp.ListenAddr, key, cfg.Udp.ReorderBacklog,
		cfg.Firewall.MaxFailures, time.Duration(cfg.Firewall.FailWindowS)*time.Second,
		time.Duration(cfg.Firewall.BanSeconds)*time.Second, fw, cfg.Udp.RotationEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to build udp receiver: %w", err)
	}
	receiver.Handler = func(_ string, samples []int16) { buf.Push(samples) }
	return receiver, nil
}

// openCaptureWithRetry opens and starts the capture device, reopening once
// on failure before giving up. A device that is momentarily busy (e.g. the
// audio server hasn't finished releasing it from a previous process) often
// succeeds on the second attempt.
func (p *Pipeline) openCaptureWithRetry() (*audio.Capture, error) {
	capture, err := audio.Open(p.cfg.Audio.Device, p.cfg.Audio.SampleRate, p.ring)
	if err == nil {
		err = capture.Start()
		if err == nil {
			return capture, nil
		}
		capture.Close()
	}
	slog.Warn("failed to open capture device, retrying once", "error", err)

	capture, err = audio.Open(p.cfg.Audio.Device, p.cfg.Audio.SampleRate, p.ring)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture device: %w", err)
	}
	if err := capture.Start(); err != nil {
		capture.Close()
		return nil, fmt.Errorf("failed to start capture: %w", err)
	}
	return capture, nil
}

// Run captures, transcribes and journals audio until ctx is cancelled,
// then drains every stage before returning.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.udpReceiver == nil {
		capture, err := p.openCaptureWithRetry()
		if err != nil {
			return herr.Wrap(herr.KindAudioDeviceLost, "pipeline.Run", err)
		}
		p.capture = capture
	}

	stop := make(chan struct{})
	chunks := chunk.Pump(p.ring, p.chunker, 500*time.Millisecond, stop)

	g, gctx := errgroup.WithContext(ctx)

	if p.monitorServer != nil {
		g.Go(func() error { return p.monitorServer.Run(gctx) })
	}
	if p.udpReceiver != nil {
		g.Go(func() error { return p.udpReceiver.Run(stop) })
	}

	transcribed := make(chan segmentBatch, 8)
	g.Go(func() error {
		defer close(transcribed)
		return p.runTranscribe(chunks, transcribed)
	})
	g.Go(func() error {
		return p.runPersist(transcribed)
	})

	<-gctx.Done()
	close(stop)
	if p.capture != nil {
		p.capture.Stop()
	}
	if p.udpReceiver != nil {
		p.udpReceiver.Close()
	}

	return waitWithDeadline(g, joinDeadline)
}

// segmentBatch carries one chunk's post-STT, pre-persist utterances plus
// the speaker label resolved for the whole chunk (speaker identification
// is scoped to whole chunks, not per-utterance).
type segmentBatch struct {
	utterances []stt.Utterance
	speaker    string
}

func (p *Pipeline) runTranscribe(chunks <-chan chunk.Chunk, out chan<- segmentBatch) error {
	for c := range chunks {
		if p.vadDetector != nil {
			hasSpeech, err := p.vadDetector.ContainsSpeech(c.Samples)
			if err != nil {
				slog.Warn("vad detection failed, transcribing anyway", "seq", c.Seq, "error", err)
			} else if !hasSpeech {
				continue
			}
		}

		utterances, err := p.stt.Transcribe(c)
		if err != nil {
			slog.Error("stt transcription failed, skipping chunk", "seq", c.Seq, "error", err)
			continue
		}
		if len(utterances) == 0 {
			continue
		}

		var speakerName string
		if p.speakerStore != nil && p.speakerExtractor != nil {
			embedding, err := p.speakerExtractor.Extract(c.Samples)
			if err != nil {
				slog.Warn("speaker embedding extraction failed", "seq", c.Seq, "error", err)
			} else if match := speaker.Identify(p.speakerStore, embedding, p.cfg.Speaker.MatchThreshold); match != nil {
				speakerName = match.Name
				if err := speaker.Refine(p.speakerStore, match, embedding, p.cfg.Speaker.EmaAlpha); err != nil {
					slog.Warn("failed to refine speaker profile", "speaker", speakerName, "error", err)
				}
			}
		}

		out <- segmentBatch{utterances: utterances, speaker: speakerName}
	}
	return nil
}

func (p *Pipeline) runPersist(in <-chan segmentBatch) error {
	for batch := range in {
		filtered := p.halluc.Apply(batch.utterances)
		for _, u := range filtered {
			text := p.dedup.Dedup(u.Text)
			if text == "" {
				continue
			}

			seg := markdown.Segment{Text: text, Speaker: batch.speaker, Timestamp: u.Timestamp}
			if err := p.writer.Write(seg); err != nil {
				slog.Error("failed to write journal segment", "error", err)
				continue
			}

			if p.monitorServer != nil {
				p.monitorServer.Broadcast(monitor.SegmentMessage{
					Timestamp: seg.Timestamp, Text: seg.Text, Speaker: seg.Speaker,
				})
			}
		}
		if p.vcsHook != nil {
			vcs.Flush(p.vcsHook, fmt.Sprintf("journal update %s", time.Now().Format(time.RFC3339)))
		}
	}
	return nil
}

// Close releases every stage's resources; call after Run returns.
func (p *Pipeline) Close() error {
	var errs []error
	if err := p.stt.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.speakerExtractor != nil {
		if err := p.speakerExtractor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.speakerStore != nil {
		if err := p.speakerStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.vadDetector != nil {
		if err := p.vadDetector.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.capture != nil {
		if err := p.capture.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("pipeline: %d error(s) during shutdown: %v", len(errs), errs)
	}
	return nil
}

// waitWithDeadline waits for g to finish, but logs a warning and returns
// nil rather than hanging forever if the deadline elapses first.
func waitWithDeadline(g *errgroup.Group, deadline time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(deadline):
		slog.Warn("pipeline shutdown exceeded deadline, detaching from remaining goroutines", "deadline", deadline)
		return nil
	}
}

// loadUdpKey reads the raw 32-byte AES-256 key from path, the same format
// `hoover send --key-file` expects.
func loadUdpKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read udp key file %q: %w", path, err)
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("udp key file %q must be exactly 32 raw bytes, got %d", path, len(data))
	}
	return data, nil
}
