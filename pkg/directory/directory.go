package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hearth-labs/hearth/pkg/agentlog"
)

var (
	// ErrGroupUnknown means the group itself cannot be resolved, so
	// nothing can be aggregated for it.
	ErrGroupUnknown = errors.New("group unknown")

	ErrUserExists         = errors.New("user already registered")
	ErrUserUnknown        = errors.New("user unknown")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages users and groups and provisions their agents in the
// external runtime.
type Service struct {
	repo     Repository
	agents   agentlog.Store
	personas Personas
	logger   zerolog.Logger
}

type ServiceOption func(*Service)

// WithPersonas overrides the built-in persona texts seeded into new agents.
func WithPersonas(p Personas) ServiceOption {
	return func(s *Service) {
		s.personas = p
	}
}

func NewService(repo Repository, agents agentlog.Store, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("directory repository is nil")
	}
	if agents == nil {
		return nil, errors.New("agent store is nil")
	}
	s := &Service{
		repo:     repo,
		agents:   agents,
		personas: DefaultPersonas(),
		logger:   log.With().Str("component", "directory").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates the user, provisions a personal agent, and attaches the
// user to the group, creating the group and its agent on first reference.
func (s *Service) Register(ctx context.Context, username, password, group string) error {
	_, found, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if found {
		return ErrUserExists
	}

	agentName := fmt.Sprintf("agent_%s", uuid.New().String()[:8])
	agentID, err := s.agents.CreateAgent(ctx, agentlog.CreateAgentRequest{
		Name:    agentName,
		Persona: s.personas.User,
		Human:   fmt.Sprintf("The user's username is %s", username),
	})
	if err != nil {
		return errors.Wrap(err, "create user agent")
	}

	if group != "" {
		g, found, err := s.repo.GetGroup(ctx, group)
		if err != nil {
			return err
		}
		if !found {
			if _, err := s.createGroup(ctx, group, []string{username}); err != nil {
				return err
			}
		} else {
			g.Members = appendUnique(g.Members, username)
			if err := s.repo.PutGroup(ctx, g); err != nil {
				return err
			}
		}
	}

	err = s.repo.PutUser(ctx, User{
		Username:  username,
		Password:  password,
		AgentID:   agentID,
		AgentName: agentName,
		Group:     group,
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Str("group", group).Str("agent_id", agentID).Msg("registered user")
	return nil
}

// Login checks credentials and makes sure the user's group agent exists.
// No hardening beyond the plain comparison; that is out of scope here.
func (s *Service) Login(ctx context.Context, username, password string) error {
	u, found, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if !found || u.Password != password {
		return ErrInvalidCredentials
	}
	if u.Group != "" {
		if _, err := s.EnsureGroupAgent(ctx, u.Group); err != nil {
			return err
		}
	}
	return nil
}

// ResolveMembers maps each member of the group to their agent handle.
// An unknown group is a caller-visible failure; members without a stored
// user record resolve to an empty handle and degrade downstream.
func (s *Service) ResolveMembers(ctx context.Context, group string) (map[string]string, error) {
	g, found, err := s.repo.GetGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(ErrGroupUnknown, "group %q", group)
	}
	members := g.Members
	if len(members) == 0 {
		members, err = s.backfillMembers(ctx, &g)
		if err != nil {
			return nil, err
		}
	}
	out := make(map[string]string, len(members))
	for _, username := range members {
		u, found, err := s.repo.GetUser(ctx, username)
		if err != nil {
			return nil, err
		}
		if !found {
			out[username] = ""
			continue
		}
		out[username] = u.AgentID
	}
	return out, nil
}

// EnsureGroupAgent makes the group and its agent exist, idempotently, and
// returns the group agent handle.
func (s *Service) EnsureGroupAgent(ctx context.Context, group string) (string, error) {
	g, found, err := s.repo.GetGroup(ctx, group)
	if err != nil {
		return "", err
	}
	if !found {
		g, err = s.createGroup(ctx, group, nil)
		if err != nil {
			return "", err
		}
	}
	if g.AgentID == "" {
		agentID, agentName, err := s.createGroupAgent(ctx, group)
		if err != nil {
			return "", err
		}
		g.AgentID = agentID
		g.AgentName = agentName
		if err := s.repo.PutGroup(ctx, g); err != nil {
			return "", err
		}
	}
	if len(g.Members) == 0 {
		if _, err := s.backfillMembers(ctx, &g); err != nil {
			return "", err
		}
	}
	return g.AgentID, nil
}

func (s *Service) UserAgentID(ctx context.Context, username string) (string, error) {
	u, found, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Wrapf(ErrUserUnknown, "user %q", username)
	}
	return u.AgentID, nil
}

func (s *Service) UserGroup(ctx context.Context, username string) (string, error) {
	u, found, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Wrapf(ErrUserUnknown, "user %q", username)
	}
	return u.Group, nil
}

func (s *Service) createGroup(ctx context.Context, name string, members []string) (Group, error) {
	agentID, agentName, err := s.createGroupAgent(ctx, name)
	if err != nil {
		return Group{}, err
	}
	g := Group{Name: name, AgentID: agentID, AgentName: agentName, Members: members}
	if err := s.repo.PutGroup(ctx, g); err != nil {
		return Group{}, err
	}
	s.logger.Info().Str("group", name).Str("agent_id", agentID).Msg("created group")
	return g, nil
}

func (s *Service) createGroupAgent(ctx context.Context, group string) (string, string, error) {
	agentName := fmt.Sprintf("group_%s_%s", group, uuid.New().String()[:8])
	agentID, err := s.agents.CreateAgent(ctx, agentlog.CreateAgentRequest{
		Name:    agentName,
		Persona: s.personas.Group,
		Human:   fmt.Sprintf("This is the group agent for %s", group),
	})
	if err != nil {
		return "", "", errors.Wrapf(err, "create group agent for %q", group)
	}
	return agentID, agentName, nil
}

// backfillMembers repopulates an empty member set by scanning every user
// whose stored group matches. This is a repair path, not a normal write.
func (s *Service) backfillMembers(ctx context.Context, g *Group) ([]string, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var members []string
	for _, u := range users {
		if u.Group == g.Name {
			members = append(members, u.Username)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	g.Members = members
	if err := s.repo.PutGroup(ctx, *g); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("group", g.Name).Int("members", len(members)).Msg("backfilled group members")
	return members, nil
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
