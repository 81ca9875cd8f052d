// Package morph owns the CodeMorph session workflow: editing, goal
// selection, the transform pipeline, run consoles and exports.
package morph

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	artifactrepo "codemorph/internal/gateway/repository/artifact"
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/sandbox"
)

// Target selects which code a Run executes and which console receives it.
type Target string

const (
	TargetInput  Target = "input"
	TargetOutput Target = "output"
)

func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetInput, TargetOutput:
		return Target(s), nil
	}
	return "", ErrInvalidTarget
}

// Service implements the session workflow on top of the session store.
type Service struct {
	store    *session.Store
	pipeline *Pipeline
	runner   *sandbox.Runner
	exports  artifactrepo.Store
	log      zerolog.Logger
}

func New(store *session.Store, pipeline *Pipeline, runner *sandbox.Runner, exports artifactrepo.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		pipeline: pipeline,
		runner:   runner,
		exports:  exports,
		log:      logger,
	}
}

// Create starts an empty javascript session with no goals.
func (s *Service) Create(context.Context) session.Session {
	sess := s.store.Create(session.Session{Language: language.JavaScript, Goals: []goal.Goal{}})
	s.log.Debug().Str("session_id", sess.ID).Msg("session created")
	return sess
}

func (s *Service) Get(_ context.Context, id string) (session.Session, error) {
	return s.store.Get(id)
}

// Patch changes several fields at once. Nil fields are left alone. Input is
// applied first, so an explicit Language overrides the detected one.
type Patch struct {
	Input    *string
	Language *language.Tag
	Goals    []goal.Goal
	SetGoals bool
}

func (s *Service) Update(_ context.Context, id string, p Patch) (session.Session, error) {
	if p.Language != nil && !p.Language.Valid() {
		return session.Session{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, *p.Language)
	}
	for _, g := range p.Goals {
		if !g.Valid() {
			return session.Session{}, ErrInvalidGoal
		}
	}
	return s.store.Update(id, func(sess *session.Session) error {
		if p.Input != nil {
			setInput(sess, *p.Input)
		}
		if p.Language != nil {
			sess.Language = *p.Language
		}
		if p.SetGoals {
			sess.Goals = goal.Dedup(p.Goals)
		}
		return nil
	})
}

// SetInput stores code and, when it is not empty, re-detects the language.
func (s *Service) SetInput(ctx context.Context, id, code string) (session.Session, error) {
	return s.Update(ctx, id, Patch{Input: &code})
}

func (s *Service) SetLanguage(ctx context.Context, id string, tag language.Tag) (session.Session, error) {
	return s.Update(ctx, id, Patch{Language: &tag})
}

func (s *Service) SetGoals(ctx context.Context, id string, goals []goal.Goal) (session.Session, error) {
	return s.Update(ctx, id, Patch{Goals: goals, SetGoals: true})
}

// ToggleGoal selects g when it is not selected and deselects it otherwise.
func (s *Service) ToggleGoal(_ context.Context, id string, g goal.Goal) (session.Session, error) {
	if !g.Valid() {
		return session.Session{}, ErrInvalidGoal
	}
	return s.store.Update(id, func(sess *session.Session) error {
		sess.Goals = goal.Toggle(sess.Goals, g)
		return nil
	})
}

// LoadSample replaces the input with the next built-in sample.
func (s *Service) LoadSample(_ context.Context, id string) (session.Session, error) {
	return s.store.Update(id, func(sess *session.Session) error {
		sample := Samples[sess.SampleIndex%len(Samples)]
		sess.InputCode = sample.Code
		sess.Language = sample.Language
		sess.SampleIndex = (sess.SampleIndex + 1) % len(Samples)
		return nil
	})
}

// Upload replaces the input with an uploaded file. Only the file name is
// checked; the language comes from the content like SetInput.
func (s *Service) Upload(ctx context.Context, id, filename string, content []byte) (session.Session, error) {
	if _, ok := language.FromFilename(filename); !ok {
		return session.Session{}, fmt.Errorf("%w: %s (accepted: %v)", ErrUnsupportedFile, path.Base(filename), language.UploadExtensions)
	}
	return s.SetInput(ctx, id, string(content))
}

// Transform runs the pipeline on the session input. The returned session is
// the final state; loading is always false in it.
func (s *Service) Transform(ctx context.Context, id string) (session.Session, error) {
	err := s.transform(context.WithoutCancel(ctx), id)
	sess, getErr := s.store.Get(id)
	if err != nil {
		return sess, err
	}
	return sess, getErr
}

func (s *Service) transform(ctx context.Context, id string) error {
	var (
		req     TransformRequest
		refused bool
	)
	_, err := s.store.Update(id, func(sess *session.Session) error {
		if sess.Loading {
			return ErrBusy
		}
		req = TransformRequest{Code: sess.InputCode, Goals: sess.Goals, Language: sess.Language}
		if req.Validate() != nil {
			refused = true
			sess.Error = PreconditionMessage
			return nil
		}
		sess.Loading = true
		sess.Error = ""
		sess.OutputCode = ""
		sess.Analysis = nil
		return nil
	})
	if err != nil {
		return err
	}
	if refused {
		return ErrPrecondition
	}
	defer func() {
		if _, err := s.store.Update(id, func(sess *session.Session) error {
			sess.Loading = false
			return nil
		}); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("failed to clear loading")
		}
	}()

	log := s.log.With().Str("session_id", id).Str("language", req.Language.String()).Strs("goals", goal.IDs(req.Goals)).Logger()
	log.Info().Msg("transform started")

	res, err := s.pipeline.Run(ctx, req, func(code string) {
		_, _ = s.store.Update(id, func(sess *session.Session) error {
			sess.OutputCode = code
			return nil
		})
	})
	if err != nil {
		msg := err.Error()
		_, _ = s.store.Update(id, func(sess *session.Session) error {
			sess.Error = msg
			sess.OutputCode = "// Error: " + msg
			return nil
		})
		log.Error().Err(err).Msg("transform failed")
		return err
	}

	_, err = s.store.Update(id, func(sess *session.Session) error {
		a := res.Analysis
		sess.Analysis = &a
		return nil
	})
	log.Info().Bool("analysis_fallback", res.AnalysisFallback).Msg("transform finished")
	return err
}

// Run executes the input or output code in the sandbox and stores the
// outcome in the matching console.
func (s *Service) Run(ctx context.Context, id string, target Target) (session.Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.Session{}, err
	}
	code, err := targetCode(sess, target)
	if err != nil {
		return session.Session{}, err
	}
	out := s.runner.Run(ctx, code, sess.Language)
	return s.store.Update(id, func(sess *session.Session) error {
		if target == TargetInput {
			sess.InputRun = &out
		} else {
			sess.OutputRun = &out
		}
		return nil
	})
}

func (s *Service) ClearRun(_ context.Context, id string, target Target) (session.Session, error) {
	if _, err := ParseTarget(string(target)); err != nil {
		return session.Session{}, err
	}
	return s.store.Update(id, func(sess *session.Session) error {
		if target == TargetInput {
			sess.InputRun = nil
		} else {
			sess.OutputRun = nil
		}
		return nil
	})
}

func targetCode(sess session.Session, target Target) (string, error) {
	switch target {
	case TargetInput:
		return sess.InputCode, nil
	case TargetOutput:
		return sess.OutputCode, nil
	}
	return "", ErrInvalidTarget
}

// DownloadName is the attachment name for output in the given language.
func DownloadName(lang language.Tag) string {
	return "codemorph-ai-output." + lang.DownloadExtension()
}

// Download returns the output file name and content.
func (s *Service) Download(_ context.Context, id string) (string, string, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return "", "", err
	}
	return DownloadName(sess.Language), sess.OutputCode, nil
}

// Export describes an output stored in the artifact store. Object is the
// name to pass to OpenExport.
type Export struct {
	Key    string `json:"key"`
	Object string `json:"object"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
}

// Export copies the current output into the artifact store. Each call
// creates a new object.
func (s *Service) Export(ctx context.Context, id string) (Export, error) {
	name, content, err := s.Download(ctx, id)
	if err != nil {
		return Export{}, err
	}
	objectName := uuid.NewString() + "/" + name
	if err := s.exports.Put(ctx, id, objectName, []byte(content), "text/plain; charset=utf-8"); err != nil {
		return Export{}, fmt.Errorf("export output: %w", err)
	}
	return s.describeExport(ctx, id, objectName), nil
}

// ListExports returns the session's exports ordered by object name.
func (s *Service) ListExports(ctx context.Context, id string) ([]Export, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}
	objects, err := s.exports.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	out := make([]Export, 0, len(objects))
	for _, obj := range objects {
		out = append(out, s.describeExport(ctx, id, obj))
	}
	return out, nil
}

// OpenExport reads back one export of a live session.
func (s *Service) OpenExport(ctx context.Context, id, object string) (string, []byte, error) {
	if _, err := s.store.Get(id); err != nil {
		return "", nil, err
	}
	content, err := s.exports.Get(ctx, id, object)
	if err != nil {
		return "", nil, err
	}
	return path.Base(object), content, nil
}

func (s *Service) describeExport(ctx context.Context, id, object string) Export {
	url, err := s.exports.GetURL(ctx, id, object)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("presign export failed")
		url = ""
	}
	return Export{Key: id + "/" + object, Object: object, Name: path.Base(object), URL: url}
}

// Watch streams session snapshots until ctx is done or the session expires.
func (s *Service) Watch(ctx context.Context, id string) (<-chan session.Session, error) {
	return s.store.Watch(ctx, id)
}

func setInput(sess *session.Session, code string) {
	sess.InputCode = code
	if code != "" {
		sess.Language = language.Detect(code)
	}
}
