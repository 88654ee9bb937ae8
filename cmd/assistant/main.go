package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/nitrr/campus-assistant/assets"
	"github.com/nitrr/campus-assistant/internal/agent"
	"github.com/nitrr/campus-assistant/internal/config"
	"github.com/nitrr/campus-assistant/internal/embedding"
	"github.com/nitrr/campus-assistant/internal/ingest"
	"github.com/nitrr/campus-assistant/internal/llm"
	"github.com/nitrr/campus-assistant/internal/logging"
	"github.com/nitrr/campus-assistant/internal/session"
	"github.com/nitrr/campus-assistant/internal/store"
	"github.com/nitrr/campus-assistant/internal/tools"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "NIT Raipur college information assistant",
		RunE:  runChat,
	}

	root.AddCommand(&cobra.Command{
		Use:   "ingest <dir>",
		Short: "Index ordinance documents into the vector store",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed <subjects.json>",
		Short: "Load syllabus subject records into the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeed,
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	gemini, err := llm.NewGeminiClient(ctx, cfg.Model, cfg.APIKey)
	if err != nil {
		return err
	}

	engine, err := newEmbeddingEngine(ctx, cfg)
	if err != nil {
		return err
	}

	vectorStore := store.NewVectorStore(cfg.VectorDBPath, engine)
	subjectStore := store.NewSubjectStore(cfg.SyllabusDBPath)

	a := agent.New(gemini, assets.SystemInstruction, logger)
	a.SetMaxIterations(cfg.MaxToolIterations)
	for _, td := range []*agent.ToolDefinition{
		tools.NewFacultyTool(cfg.FacultyDataDir, gemini, logger).Definition(),
		tools.NewSyllabusTool(subjectStore, logger).Definition(),
		tools.NewOrdinanceTool(vectorStore, logger).Definition(),
	} {
		if err := a.Register(td); err != nil {
			return err
		}
	}

	sess, cleanup, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	a.SetTextSink(func(text string) {
		out, err := renderer.Render(text)
		if err != nil {
			fmt.Println(text)
			return
		}
		fmt.Print(out)
	})

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if _, err := a.RunTurn(ctx, sess, input); err != nil {
			return err
		}

		if err := sess.WriteTranscript(cfg.TranscriptPath); err != nil {
			logger.Warn("failed to write transcript", zap.Error(err))
		}
		if err := sess.Sync(ctx); err != nil {
			logger.Warn("failed to save session", zap.Error(err))
		}
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	engine, err := newEmbeddingEngine(ctx, cfg)
	if err != nil {
		return err
	}

	vectorStore := store.NewVectorStore(cfg.VectorDBPath, engine)
	if err := vectorStore.CreateSchema(ctx); err != nil {
		return err
	}

	n, err := ingest.New(vectorStore, logger).IngestDir(ctx, args[0])
	if err != nil {
		return err
	}

	logger.Info("ingestion complete", zap.Int("chunks", n), zap.String("db", cfg.VectorDBPath))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var subjects []store.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	subjectStore := store.NewSubjectStore(cfg.SyllabusDBPath)
	if err := subjectStore.CreateSchema(ctx); err != nil {
		return err
	}

	for _, subject := range subjects {
		if err := subjectStore.Insert(ctx, subject); err != nil {
			return err
		}
	}

	logger.Info("seeding complete", zap.Int("subjects", len(subjects)), zap.String("db", cfg.SyllabusDBPath))
	return nil
}

// newEmbeddingEngine picks the Gemini embedding API when a key is present
// and falls back to the local hash embedder otherwise, so the ordinance
// index stays usable offline.
func newEmbeddingEngine(ctx context.Context, cfg config.Config) (embedding.Engine, error) {
	if cfg.APIKey == "" {
		return embedding.NewHashEngine(), nil
	}

	return embedding.NewGenAIEngine(ctx, cfg.APIKey, cfg.EmbeddingModel)
}

// newSession builds the conversation session, backed by MongoDB when
// MONGODB_URI is set so history survives restarts.
func newSession(ctx context.Context, cfg config.Config, logger *zap.Logger) (*session.Session, func(), error) {
	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	if cfg.MongoURI == "" {
		return session.New(id), func() {}, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb connect: %w", err)
	}

	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn("mongodb disconnect", zap.Error(err))
		}
	}

	repo := session.NewMongoRepository(client.Database(cfg.MongoDatabase), "conversations")
	sess, err := session.NewWithRepository(ctx, id, repo)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return sess, cleanup, nil
}
