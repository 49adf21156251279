package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/llm"
)

// State is a step of the generation state machine.
type State string

const (
	StateReady            State = "READY"
	StateBuildingContext  State = "BUILDING_CONTEXT"
	StateCallingPrimary   State = "CALLING_PRIMARY_MODEL"
	StateCallingSecondary State = "CALLING_SECONDARY_MODEL"
	StateParseOK          State = "PARSE_OK"
	StateValidating       State = "VALIDATING"
	StateValid            State = "VALID"
	StateInvalid          State = "INVALID"
	StateTemplateFallback State = "TEMPLATE_FALLBACK"
	StateDone             State = "DONE"
)

// Quiz defaults.
const (
	DefaultMaxAttempts = 3
	purposeQuizGen     = "quiz-gen"
)

var errNoProvider = errors.New("no provider configured")

// Generator produces personalized quizzes. Model failures never surface:
// the primary model falls back to the secondary, and both fall back to
// deterministic templates. Only an invalid request is an error.
type Generator struct {
	primary   llm.Provider
	secondary llm.Provider
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Generator. Either provider may be nil, in which case that
// tier is skipped.
func New(primary, secondary llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		primary:   primary,
		secondary: secondary,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// run tracks the state of one Generate call.
type run struct {
	g     *Generator
	trace []State
}

func (r *run) enter(s State) {
	r.trace = append(r.trace, s)
	r.g.logger.Debug("quizgen state", "state", s)
}

// Generate runs the generation state machine and always returns a quiz
// with at least one question for a valid request.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if err := in.Request.Validate(); err != nil {
		return nil, err
	}

	r := &run{g: g}
	r.enter(StateReady)

	r.enter(StateBuildingContext)
	pc := buildContext(in, g.config)
	req := llm.UserPrompt(systemPrompt, buildUserMessage(pc, g.config), g.config.MaxTokens, g.config.Temperature)
	req.JSONArray = true

	info := Info{Trend: pc.Trend}
	ctx = llm.WithLabels(ctx, llm.Labels{Purpose: purposeQuizGen, Subject: in.Request.StudentID})

	r.enter(StateCallingPrimary)
	cands, model, err := g.attempt(ctx, g.primary, req, TierPrimary)
	info.Tier = TierPrimary
	if err != nil {
		if ctx.Err() == nil {
			r.enter(StateCallingSecondary)
			cands, model, err = g.attempt(ctx, g.secondary, req, TierSecondary)
			info.Tier = TierSecondary
		}
	}

	var questions []Question
	if err == nil {
		r.enter(StateParseOK)
		r.enter(StateValidating)
		var rejected []*ValidationError
		questions, rejected = validateCandidates(cands, g.config.Validators)
		info.Discarded = len(rejected)
		for _, verr := range rejected {
			g.logger.Warn("discarded generated question", "tier", info.Tier, "model", model, "error", verr)
		}
		if len(questions) > 0 {
			r.enter(StateValid)
			if len(questions) > in.Request.QuestionCount {
				questions = questions[:in.Request.QuestionCount]
			}
			info.Source = SourceAI
			info.Model = model
		} else {
			r.enter(StateInvalid)
		}
	}

	concepts := analysis.Concepts(pc.Weaknesses)
	if len(questions) == 0 {
		r.enter(StateTemplateFallback)
		concepts = analysis.Concepts(pc.AllWeaknesses)
		questions = templateQuestions(pc.Request.Topic, concepts, pc.Request.QuestionCount)
		concepts = head(concepts, len(questions))
		info.Source = SourceFallback
		info.Tier = TierTemplate
		info.Model = ""
	}

	info.WeaknessesTargeted = len(concepts)
	if info.Source == SourceAI {
		info.StrengthsReinforced = len(pc.Strengths)
	}
	if len(concepts) == 0 {
		concepts = []string{pc.Request.Topic}
	}

	quiz := g.assemble(pc, questions, concepts, info.Source)
	r.enter(StateDone)
	info.Trace = r.trace

	g.logger.Info("quiz generated",
		"student", pc.Request.StudentID,
		"quiz_id", quiz.ID,
		"questions", len(quiz.Questions),
		"source", info.Source,
		"tier", info.Tier,
		"discarded", info.Discarded,
	)
	return &Result{Quiz: quiz, Info: info}, nil
}

// attempt calls one model tier under the configured timeout and parses its
// output. An empty candidate list is reported as an error.
func (g *Generator) attempt(ctx context.Context, p llm.Provider, req llm.Request, tier Tier) ([]json.RawMessage, string, error) {
	if p == nil {
		return nil, "", errNoProvider
	}
	model := p.ModelID()

	callCtx := ctx
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := p.Generate(llm.WithTier(callCtx, string(tier)), req)
	if err != nil {
		g.logger.Warn("generation service unavailable", "tier", tier, "model", model, "error", err)
		return nil, model, fmt.Errorf("%s model %s: %w", tier, model, err)
	}

	cands := parseCandidates(resp.Text)
	if len(cands) == 0 {
		g.logger.Warn("malformed generation output", "tier", tier, "model", model, "bytes", len(resp.Text))
		return nil, model, &llm.ErrInvalidResponse{Text: resp.Text, Err: errors.New("no question array in response")}
	}
	return cands, model, nil
}

func (g *Generator) assemble(pc promptContext, questions []Question, concepts []string, source Source) *Quiz {
	r := pc.Request
	desc := fmt.Sprintf("Personalized practice on %s", r.Topic)
	if pc.Course.Title != "" {
		desc = fmt.Sprintf("Personalized practice on %s for %s", r.Topic, pc.Course.Title)
	}
	return &Quiz{
		ID:               uuid.NewString(),
		Title:            "Personalized Quiz: " + r.Topic,
		Description:      desc,
		StudentID:        r.StudentID,
		CourseID:         r.CourseID,
		Topic:            r.Topic,
		TargetConcepts:   concepts,
		Questions:        questions,
		PassingScore:     PassingScore(pc.Average, pc.Trend),
		TimeLimitMinutes: TimeLimit(len(questions)),
		MaxAttempts:      DefaultMaxAttempts,
		ShuffleQuestions: true,
		ShowExplanations: true,
		Source:           source,
		CreatedAt:        g.now().UTC(),
	}
}
