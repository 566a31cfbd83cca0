package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/artifact"
	"github.com/hearth-labs/hearth/pkg/classify"
	"github.com/hearth-labs/hearth/pkg/directory"
	"github.com/hearth-labs/hearth/pkg/media"
)

const advicePrompt = "Can you provide some advice?"

// ServiceConfig wires the assistant's collaborators. Transcriber,
// Captioner and Images are optional (media features off); the rest are
// required.
type ServiceConfig struct {
	Directory   *directory.Service
	Agents      agentlog.Store
	Synthesizer *artifact.Synthesizer
	Transcriber *media.Transcriber
	Captioner   *media.Captioner
	Images      *media.ImageStore
}

// Service is the thin orchestrator between UI events and the group
// pipeline. It owns no state of its own.
type Service struct {
	directory   *directory.Service
	agents      agentlog.Store
	synthesizer *artifact.Synthesizer
	transcriber *media.Transcriber
	captioner   *media.Captioner
	images      *media.ImageStore
	logger      zerolog.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Directory == nil {
		return nil, errors.New("assistant service directory is nil")
	}
	if cfg.Agents == nil {
		return nil, errors.New("assistant service agent store is nil")
	}
	if cfg.Synthesizer == nil {
		return nil, errors.New("assistant service synthesizer is nil")
	}
	return &Service{
		directory:   cfg.Directory,
		agents:      cfg.Agents,
		synthesizer: cfg.Synthesizer,
		transcriber: cfg.Transcriber,
		captioner:   cfg.Captioner,
		images:      cfg.Images,
		logger:      log.With().Str("component", "assistant").Logger(),
	}, nil
}

func (s *Service) Register(ctx context.Context, username, password, group string) error {
	return s.directory.Register(ctx, username, password, group)
}

func (s *Service) Login(ctx context.Context, username, password string) error {
	return s.directory.Login(ctx, username, password)
}

// Chat sends user text to the user's personal agent and returns the
// assistant's visible replies (the send_message payloads) in order.
func (s *Service) Chat(ctx context.Context, username, text string) ([]string, error) {
	agentID, err := s.directory.UserAgentID(ctx, username)
	if err != nil {
		return nil, err
	}
	entries, err := s.agents.SendMessage(ctx, agentID, text)
	if err != nil {
		return nil, errors.Wrap(err, "send message to agent")
	}
	records := classify.Classify(username, agentlog.AgentData{Entries: entries})
	var replies []string
	for _, r := range records {
		if r.Kind == classify.KindAssistantMessage {
			replies = append(replies, r.Text)
		}
	}
	if len(replies) == 0 {
		return nil, errors.New("no assistant reply in agent response")
	}
	return replies, nil
}

// Advice asks the user's agent for general advice.
func (s *Service) Advice(ctx context.Context, username string) ([]string, error) {
	return s.Chat(ctx, username, advicePrompt)
}

// AddTodo incorporates a new item and returns the re-synthesized list.
func (s *Service) AddTodo(ctx context.Context, group, item string) (string, error) {
	return s.synthesizer.Synthesize(ctx, group, artifact.KindTodo, item)
}

// TodoList re-synthesizes the group's to-do list from current histories.
func (s *Service) TodoList(ctx context.Context, group string) (string, error) {
	return s.synthesizer.Synthesize(ctx, group, artifact.KindTodo, "")
}

// AddBulletin incorporates a new item and returns the re-synthesized board.
func (s *Service) AddBulletin(ctx context.Context, group, item string) (string, error) {
	return s.synthesizer.Synthesize(ctx, group, artifact.KindBulletin, item)
}

// BulletinBoard re-synthesizes the group's bulletin board.
func (s *Service) BulletinBoard(ctx context.Context, group string) (string, error) {
	return s.synthesizer.Synthesize(ctx, group, artifact.KindBulletin, "")
}

// GroupOf resolves the group a user belongs to.
func (s *Service) GroupOf(ctx context.Context, username string) (string, error) {
	group, err := s.directory.UserGroup(ctx, username)
	if err != nil {
		return "", err
	}
	if group == "" {
		return "", errors.Errorf("user %q belongs to no group", username)
	}
	return group, nil
}

// MultimodalInput is one UI capture: optional audio file, optional image.
type MultimodalInput struct {
	AudioPath  string
	ImageBytes []byte
	ImageExt   string
	Model      string
	Current    string
}

// ProcessMultimodal transcribes the audio, captions and stores the image,
// and appends both to the current input text, mirroring the capture flow
// of the UI layer.
func (s *Service) ProcessMultimodal(ctx context.Context, in MultimodalInput) (string, error) {
	var parts []string

	if in.AudioPath != "" {
		if s.transcriber == nil {
			return "", errors.New("transcription not configured")
		}
		transcript, err := s.transcriber.Transcribe(ctx, in.AudioPath)
		if err != nil {
			return "", err
		}
		parts = append(parts, "Voice input: "+transcript.Text)
	}

	if len(in.ImageBytes) > 0 {
		if s.captioner == nil || s.images == nil {
			return "", errors.New("image processing not configured")
		}
		caption, err := s.captioner.Describe(ctx, in.ImageBytes, in.ImageExt, in.Model)
		if err != nil {
			return "", err
		}
		stored, err := s.images.Put(in.ImageBytes, in.ImageExt, caption.Summary)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("Image processed with %s (ID: %s):\n%s", caption.Model, stored.ID, caption.Summary))
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if in.Current != "" && combined != "" {
		return in.Current + "\n\n" + combined, nil
	}
	if combined == "" {
		return in.Current, nil
	}
	return combined, nil
}
