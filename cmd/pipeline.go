package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/cache"
	"github.com/abhisek/adaptiq/internal/events"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/personalize"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/store"
)

const cachePrefix = "adaptiq:"

// pipeline holds the resources opened for one command invocation.
type pipeline struct {
	store   *store.Store
	cache   *cache.Cache
	bus     *events.Bus
	service *personalize.Service
}

// openPipeline opens the store and optional cache, and builds the
// personalization service. The LLM chain is only constructed when
// withGenerator is set.
func openPipeline(cmd *cobra.Command, withGenerator bool) (*pipeline, error) {
	ctx := cmd.Context()
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	p := &pipeline{store: st}

	c, err := cache.Open(ctx, cfg.RedisURL, cachePrefix)
	if err != nil {
		// The cache is an optimization; run without it.
		logger.Warn("profile cache disabled", "error", err)
		c = nil
	}
	p.cache = c

	opts := []personalize.Option{
		personalize.WithLogger(logger),
		personalize.WithQuizRepo(st.Quizzes()),
		personalize.WithCache(c),
	}

	var generator personalize.QuizGenerator
	if withGenerator {
		providers, err := llm.NewProviders(ctx, cfg.LLM, st.EventRepo(), logger)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("configure LLM: %w", err)
		}
		generator = quizgen.New(providers.Primary, providers.Secondary, generatorConfig(cfg.LLM), logger)

		p.bus = events.NewBus(events.NewGoChannel(logger), logger)
		opts = append(opts, personalize.WithPublisher(p.bus))
	}

	p.service = personalize.New(st.Attempts(), st.Directory(), generator, opts...)
	return p, nil
}

// generatorConfig applies the configured per-call timeout to the quiz
// generator defaults.
func generatorConfig(lc llm.Config) quizgen.Config {
	qc := quizgen.DefaultConfig()
	if lc.Timeout > 0 {
		qc.Timeout = lc.Timeout
	}
	return qc
}

func (p *pipeline) Close() {
	if p.bus != nil {
		if err := p.bus.Close(); err != nil {
			logger.Warn("close event bus", "error", err)
		}
	}
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			logger.Warn("close cache", "error", err)
		}
	}
	if err := p.store.Close(); err != nil {
		logger.Warn("close store", "error", err)
	}
}

// userError turns pipeline errors a user can fix into short messages.
func userError(err error) error {
	if errors.Is(err, personalize.ErrInputNotFound) {
		return fmt.Errorf("%w (import data with `adaptiq import`)", err)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addStudentFlags(cmd *cobra.Command) {
	cmd.Flags().String("student", "", "Student id")
	cmd.Flags().String("course", "", "Course id (empty for all courses)")
	_ = cmd.MarkFlagRequired("student")
}

func studentFlags(cmd *cobra.Command) (string, string) {
	student, _ := cmd.Flags().GetString("student")
	course, _ := cmd.Flags().GetString("course")
	return student, course
}
