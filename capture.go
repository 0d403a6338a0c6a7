package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CaptureState is one node of the capture pipeline's state machine.
type CaptureState string

const (
	CaptureIdle           CaptureState = "idle"
	CaptureChoosingPrompt CaptureState = "choosingPrompt"
	CaptureReady          CaptureState = "ready"
	CaptureRecording      CaptureState = "recording"
	CaptureReviewing      CaptureState = "reviewing"
	CaptureSubmitting     CaptureState = "submitting"
	CaptureDone           CaptureState = "done"
	CaptureFailed         CaptureState = "failed"
)

// captureTransitions is the exhaustive transition table. The session's
// single state field is the only source of truth; there are no parallel
// boolean flags to drift out of sync.
var captureTransitions = map[CaptureState][]CaptureState{
	CaptureIdle:           {CaptureChoosingPrompt},
	CaptureChoosingPrompt: {CaptureReady},
	CaptureReady:          {CaptureRecording, CaptureChoosingPrompt, CaptureFailed},
	CaptureRecording:      {CaptureReviewing, CaptureFailed},
	CaptureReviewing:      {CaptureReady, CaptureSubmitting},
	CaptureSubmitting:     {CaptureDone, CaptureReviewing},
	CaptureDone:           {},
	CaptureFailed:         {},
}

// CaptureDevice acquires a live audio+video stream. Implementations wrap
// a real device API or a synthetic source for demos and tests.
type CaptureDevice interface {
	Acquire(ctx context.Context) (DeviceStream, error)
}

// DeviceStream yields encoded chunks of the live stream. StopTracks must
// release the underlying device exactly once.
type DeviceStream interface {
	// ReadChunk returns the next recorded chunk, or io.EOF once the
	// stream is exhausted.
	ReadChunk() ([]byte, error)
	ContentType() string
	StopTracks()
}

// QualitySignal samples lighting and sound adequacy. Best-effort
// coaching only; it never gates recording.
type QualitySignal func() (light, sound bool)

// QualitySample is one coaching reading shown while recording.
type QualitySample struct {
	Light bool
	Sound bool
	Tip   string
}

// defaultQualitySignal approximates environment analysis with a skewed
// random signal, matching the reference heuristic.
func defaultQualitySignal() (bool, bool) {
	return rand.Float64() > 0.2, rand.Float64() > 0.3
}

// coachingTip turns a sample into a short human-readable hint.
func coachingTip(light, sound bool) string {
	switch {
	case light && sound:
		return "Perfect! You look and sound great."
	case !light:
		return "Try facing a window for better light."
	default:
		return "It's a bit noisy—try a quieter spot."
	}
}

// CaptureSession drives one contributor through the guided recording
// flow: prompt choice, live recording with coaching, review, and durable
// submission.
type CaptureSession struct {
	projectID     string
	contributorID string

	device     CaptureDevice
	copywriter *Copywriter
	media      *MediaStore
	store      *ProjectStore
	signal     QualitySignal
	logger     *log.Logger

	mu          sync.Mutex
	state       CaptureState
	prompts     []string
	promptIndex int
	stream      DeviceStream
	blob        []byte
	contentType string
	failure     string
	lastSample  QualitySample
	stopQuality chan struct{}
}

// NewCaptureSession creates an idle session for one contributor.
func NewCaptureSession(projectID, contributorID string, device CaptureDevice, copywriter *Copywriter, media *MediaStore, store *ProjectStore, logger *log.Logger) *CaptureSession {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CaptureSession{
		projectID:     projectID,
		contributorID: contributorID,
		device:        device,
		copywriter:    copywriter,
		media:         media,
		store:         store,
		signal:        defaultQualitySignal,
		logger:        logger,
		state:         CaptureIdle,
	}
}

// SetQualitySignal replaces the environment sampler.
func (cs *CaptureSession) SetQualitySignal(signal QualitySignal) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if signal != nil {
		cs.signal = signal
	}
}

// State returns the current pipeline state.
func (cs *CaptureSession) State() CaptureState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

// Failure returns the user-facing message for a failed session.
func (cs *CaptureSession) Failure() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.failure
}

// Prompts returns the suggested conversation prompts.
func (cs *CaptureSession) Prompts() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.prompts...)
}

// ChosenPrompt returns the prompt the contributor picked.
func (cs *CaptureSession) ChosenPrompt() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.promptIndex < 0 || cs.promptIndex >= len(cs.prompts) {
		return ""
	}
	return cs.prompts[cs.promptIndex]
}

// Quality returns the latest coaching sample taken while recording.
func (cs *CaptureSession) Quality() QualitySample {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastSample
}

// Begin fetches conversation prompts and moves to prompt choice. The
// copywriter's static fallback guarantees prompts are always available.
func (cs *CaptureSession) Begin(ctx context.Context, milestone MilestoneType, recipientName string) error {
	prompts := cs.copywriter.ContributorPrompts(ctx, milestone, recipientName)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.transitionLocked(CaptureChoosingPrompt); err != nil {
		return err
	}
	cs.prompts = prompts
	return nil
}

// ChoosePrompt selects a prompt and readies the session for recording.
func (cs *CaptureSession) ChoosePrompt(index int) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if index < 0 || index >= len(cs.prompts) {
		return fmt.Errorf("prompt index %d out of range", index)
	}
	if err := cs.transitionLocked(CaptureReady); err != nil {
		return err
	}
	cs.promptIndex = index
	return nil
}

// RechoosePrompt returns from readiness to prompt choice.
func (cs *CaptureSession) RechoosePrompt() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.transitionLocked(CaptureChoosingPrompt)
}

// StartRecording acquires the device stream and begins recording.
// Permission or device failures resolve to the failed state with a
// user-facing message; they never crash or hang the flow.
func (cs *CaptureSession) StartRecording(ctx context.Context) error {
	cs.mu.Lock()
	if cs.state != CaptureReady {
		defer cs.mu.Unlock()
		return cs.transitionLocked(CaptureRecording)
	}
	cs.mu.Unlock()

	stream, err := cs.device.Acquire(ctx)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err != nil {
		cs.state = CaptureFailed
		cs.failure = "We need camera and microphone access to record."
		return fmt.Errorf("device acquisition failed: %w", err)
	}

	if err := cs.transitionLocked(CaptureRecording); err != nil {
		stream.StopTracks()
		return err
	}

	cs.stream = stream
	cs.contentType = stream.ContentType()
	cs.lastSample = QualitySample{Tip: "Finding your best light..."}
	cs.stopQuality = make(chan struct{})
	go cs.sampleQuality(cs.stopQuality)
	return nil
}

// sampleQuality ticks while recording, refreshing the coaching sample.
func (cs *CaptureSession) sampleQuality(stop <-chan struct{}) {
	ticker := time.NewTicker(QualitySampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cs.mu.Lock()
			light, sound := cs.signal()
			cs.lastSample = QualitySample{Light: light, Sound: sound, Tip: coachingTip(light, sound)}
			cs.mu.Unlock()
		}
	}
}

// StopRecording assembles the accumulated chunks into a single blob and
// moves to review. The device stream's tracks are stopped at this
// transition regardless of outcome.
func (cs *CaptureSession) StopRecording() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != CaptureRecording {
		return cs.transitionLocked(CaptureReviewing)
	}

	if cs.stopQuality != nil {
		close(cs.stopQuality)
		cs.stopQuality = nil
	}

	var blob []byte
	var readErr error
	for {
		chunk, err := cs.stream.ReadChunk()
		if len(chunk) > 0 {
			blob = append(blob, chunk...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}
	cs.stream.StopTracks()
	cs.stream = nil

	if readErr != nil {
		cs.state = CaptureFailed
		cs.failure = "Recording was interrupted. Please try again."
		return fmt.Errorf("reading stream: %w", readErr)
	}
	if len(blob) == 0 {
		cs.state = CaptureFailed
		cs.failure = "Nothing was recorded. Please try again."
		return errors.New("empty recording")
	}

	if err := cs.transitionLocked(CaptureReviewing); err != nil {
		return err
	}
	cs.blob = blob
	return nil
}

// Discard abandons the reviewed blob and returns to ready for a
// re-record.
func (cs *CaptureSession) Discard() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.transitionLocked(CaptureReady); err != nil {
		return err
	}
	cs.blob = nil
	return nil
}

// Submit persists the reviewed blob in the media store under the
// contributor's stable video slot and records the Memory on the owning
// contributor. Storage failures revert to review so the contributor can
// retry; they are never silently dropped.
func (cs *CaptureSession) Submit(ctx context.Context) (*Memory, error) {
	cs.mu.Lock()
	if err := cs.transitionLocked(CaptureSubmitting); err != nil {
		cs.mu.Unlock()
		return nil, err
	}
	blob := cs.blob
	contentType := cs.contentType
	prompt := ""
	if cs.promptIndex >= 0 && cs.promptIndex < len(cs.prompts) {
		prompt = cs.prompts[cs.promptIndex]
	}
	cs.mu.Unlock()

	if contentType == "" {
		contentType = "video/webm"
	}
	key := fmt.Sprintf("%s/%s/video", cs.projectID, cs.contributorID)

	if err := cs.media.SaveBlob(key, contentType, blob); err != nil {
		cs.mu.Lock()
		cs.state = CaptureReviewing
		cs.mu.Unlock()
		return nil, fmt.Errorf("saving memory: %w", err)
	}

	memory := Memory{
		ID:         uuid.NewString(),
		Type:       MediaVideo,
		MediaKey:   key,
		Transcript: prompt,
		CreatedAt:  timeNow(),
	}
	if err := cs.store.AddMemory(cs.projectID, cs.contributorID, memory); err != nil {
		cs.mu.Lock()
		cs.state = CaptureReviewing
		cs.mu.Unlock()
		return nil, err
	}

	cs.mu.Lock()
	err := cs.transitionLocked(CaptureDone)
	cs.blob = nil
	cs.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &memory, nil
}

// transitionLocked enforces the transition table; callers hold the lock.
func (cs *CaptureSession) transitionLocked(to CaptureState) error {
	for _, allowed := range captureTransitions[cs.state] {
		if allowed == to {
			cs.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid capture transition %s -> %s", cs.state, to)
}
